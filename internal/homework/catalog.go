package homework

import "fmt"

// Review status codes reported by the API.
const (
	StatusApproved  = "approved"
	StatusReviewing = "reviewing"
	StatusRejected  = "rejected"
)

var verdicts = map[string]string{
	StatusApproved:  "Работа проверена: ревьюеру всё понравилось. Ура!",
	StatusReviewing: "Работа взята на проверку ревьюером.",
	StatusRejected:  "Работа проверена: у ревьюера есть замечания.",
}

const noticeFormat = `Изменился статус проверки работы "%s". %s`

// Verdict returns the human-readable verdict for a status code.
func Verdict(code string) (string, bool) {
	v, ok := verdicts[code]
	return v, ok
}

// RenderNotice builds the chat text announcing a status change.
func RenderNotice(name, verdict string) string {
	return fmt.Sprintf(noticeFormat, name, verdict)
}
