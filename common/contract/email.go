package contract

//go:generate mockgen -source=email.go -destination=mocks/email.go -package=mocks

type EmailSender interface {
	Send(to []string, subject string, body string) error
}
