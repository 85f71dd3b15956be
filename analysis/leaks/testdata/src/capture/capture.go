package capture

import (
	"errors"
	"fmt"
	"log"
	"strings"
)

type User struct {
	Email     string
	SSN       string
	FirstName string
	Age       int
}

type Logger interface {
	Infof(format string, v ...any)
}

type Capturer interface {
	Capture(err error, id string, fields map[string]any, args ...string)
}

func maskEmail(s string) string {
	return strings.Repeat("*", len(s))
}

func direct(u User, l Logger) {
	log.Printf("user %s", u.Email) // want "potential data leak"
	l.Infof("age %d", u.Age)       // want "potential data leak"
	fmt.Println(u.SSN)             // want "potential data leak"
	log.Printf("user %s", maskEmail(u.Email))
	_ = fmt.Errorf("invalid ssn %s", u.SSN)
}

func throughAssignments(u User, c Capturer) {
	name := u.FirstName
	msg := fmt.Sprintf("hello %s", name)
	c.Capture(errors.New(msg), "", nil)                               // want "potential data leak"
	c.Capture(errors.New("failed"), "", map[string]any{"ssn": u.SSN}) // want "potential data leak"
	c.Capture(errors.New("failed"), "", map[string]any{"fine": 1})
}

func suppressed(u User) {
	log.Println(u.Email) //piiscan:ignore
	//piiscan:ignore
	log.Println(u.SSN)
}
