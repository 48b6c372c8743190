package model

// Identity is the verified caller as reported by the access token.
type Identity struct {
	Subject     string // token subject, used for rate limiting and logs
	IsAdmin     bool   // admins may mutate everything
	TeacherSlug string // teachers may mutate lessons booked against this slug
}

// CanManageTeacher reports whether the caller may mutate lessons of the
// given teacher.
func (id Identity) CanManageTeacher(teacherID string) bool {
	if id.IsAdmin {
		return true
	}
	return id.TeacherSlug != "" && id.TeacherSlug == teacherID
}
