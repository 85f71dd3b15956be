package goapp

import (
	"fmt"
	"log"

	sentry "github.com/getsentry/sentry-go"
)

type User struct {
	Email string
	SSN   string
	Age   int
	Phone fmt.Stringer
}

type Logger interface {
	Infof(format string, v ...any)
}

func hashValue(s string) string {
	return fmt.Sprintf("%x", len(s))
}

func Handle(u User, logger Logger) {
	log.Printf("user %s", u.Email) // @Leak(email)
	log.Println(u.Phone.String())  // @Leak(phone_number)
	e := u.SSN
	msg := fmt.Sprintf("ssn: %s", e)
	logger.Infof(msg) // @Leak(ssn)
	fmt.Println(hashValue(u.Email))
	sentry.CaptureMessage("age " + fmt.Sprint(u.Age)) // @Leak(age)
	//piiscan:ignore
	log.Println(u.Email)
	go func() {
		logger.Infof("%s %d", msg, u.Age) // @Leak(ssn, age)
	}()
}
