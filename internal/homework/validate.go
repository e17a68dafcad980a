package homework

import (
	"github.com/tidwall/gjson"
)

// Wire field names of the status API.
const (
	fieldCursor    = "current_date"
	fieldHomeworks = "homeworks"
	fieldName      = "homework_name"
	fieldStatus    = "status"
)

// Task is one homework record of an API answer.
type Task struct {
	raw gjson.Result
}

// Raw returns the record's JSON text.
func (t Task) Raw() string { return t.raw.Raw }

// Validate checks the answer's shape and returns the server cursor and the
// homework records, newest first as the API sends them. The list may be empty.
func Validate(doc Document) (int64, []Task, error) {
	root := doc.root
	if !root.IsObject() {
		return 0, nil, shapeError("нет словаря в ответе API")
	}

	cur := root.Get(fieldCursor)
	if isFalsy(cur) {
		return 0, nil, &Error{Kind: KindMissingCursor, Msg: "нет даты в ответе API (current_date)"}
	}
	if cur.Type != gjson.Number || float64(cur.Int()) != cur.Num || cur.Int() < 0 {
		return 0, nil, shapeError("current_date в ответе API не является меткой времени: " + cur.Raw)
	}

	hw := root.Get(fieldHomeworks)
	if !hw.IsArray() {
		return 0, nil, shapeError("нет списка homeworks в ответе API")
	}
	items := hw.Array()
	tasks := make([]Task, 0, len(items))
	for _, it := range items {
		tasks = append(tasks, Task{raw: it})
	}
	return cur.Int(), tasks, nil
}

// isFalsy treats absent, null, false, zero and empty-string values as missing.
func isFalsy(r gjson.Result) bool {
	if !r.Exists() {
		return true
	}
	switch r.Type {
	case gjson.Null, gjson.False:
		return true
	case gjson.Number:
		return r.Num == 0
	case gjson.String:
		return r.Str == ""
	default:
		return false
	}
}
