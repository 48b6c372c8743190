// Command book creates lessons through a running API and prints the ones
// that were booked.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/iliyamo/lesson-scheduler/internal/client"
	"github.com/iliyamo/lesson-scheduler/internal/model"
)

func main() {
	api := flag.String("api", "http://localhost:8080", "API base URL")
	token := flag.String("token", os.Getenv("LESSON_TOKEN"), "bearer token, see cmd/token")
	teacher := flag.String("teacher", "", "teacher id")
	student := flag.String("student", "", "student id")
	date := flag.String("date", "", "first date, YYYY-MM-DD")
	slot := flag.String("slot", "", "time slot")
	makeup := flag.Bool("makeup", false, "book a single makeup lesson")
	weeks := flag.Int("weeks", 0, "weeks to book, server default when 0")
	flag.Parse()

	req := client.CreateRequest{Lesson: client.LessonTemplate{
		TeacherID: *teacher,
		StudentID: *student,
		Date:      *date,
		TimeSlot:  *slot,
	}}
	if *makeup {
		req.Lesson.Type = model.LessonMakeup
	}
	if *weeks > 0 {
		req.Weeks = weeks
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	lessons, err := client.New(*api, *token).CreateLessons(ctx, req)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("booked %d lesson(s)\n", len(lessons))
	for _, l := range lessons {
		fmt.Printf("%s  %s %s  #%d  %s\n", l.ID, l.Date, l.TimeSlot, l.SessionNumber, l.Type)
	}
}
