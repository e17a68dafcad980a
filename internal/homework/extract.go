package homework

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractNotice renders the status-change notice for a homework record.
func ExtractNotice(task Task) (string, error) {
	name := task.raw.Get(fieldName)
	if !present(name) {
		return "", missingFieldError(fieldName)
	}
	status := task.raw.Get(fieldStatus)
	if !present(status) {
		return "", missingFieldError(fieldStatus)
	}

	code := status.String()
	verdict, ok := Verdict(code)
	if !ok {
		return "", &Error{Kind: KindUnknownStatus, Status: code, Msg: "неизвестный статус задания: " + code}
	}
	return RenderNotice(name.String(), verdict), nil
}

func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null && strings.TrimSpace(r.String()) != ""
}
