// Command token mints access tokens for local use and for the identity
// provider's integration tests.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/iliyamo/lesson-scheduler/internal/config"
	"github.com/iliyamo/lesson-scheduler/internal/utils"
)

func main() {
	role := flag.String("role", utils.RoleAdmin, "ADMIN or TEACHER")
	subject := flag.String("sub", "cli", "token subject")
	slug := flag.String("teacher", "", "teacher slug owned by a TEACHER token")
	ttl := flag.Duration("ttl", 0, "lifetime, defaults to ACCESS_TOKEN_TTL_MIN")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *ttl <= 0 {
		*ttl = time.Duration(cfg.AccessTTLMin) * time.Minute
	}
	tok, err := utils.NewAccessToken(cfg.JWTSecret, *subject, strings.ToUpper(*role), *slug, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(tok.Token)
	fmt.Fprintf(os.Stderr, "expires %s\n", tok.Exp.Format(time.RFC3339))
}
