package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables holding the secrets.
const (
	EnvPracticumToken = "PRACTICUM_TOKEN"
	EnvTelegramToken  = "TELEGRAM_TOKEN"
	EnvTelegramChatID = "TELEGRAM_CHAT_ID"
)

var ErrMissingCredentials = errors.New("missing required environment variables")

// Credentials are read once at startup and never change afterwards.
// Exactly one of ChatID and ChatUsername is set.
type Credentials struct {
	PracticumToken string
	TelegramToken  string
	ChatID         int64
	ChatUsername   string // "@channel"
}

// LoadDotenv loads variables from a dotenv file without overriding the
// ones already set. A missing file is not an error.
func LoadDotenv(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("dotenv %s: %w", path, err)
	}
	return nil
}

// LoadCredentials reads the three secrets through getenv (os.Getenv in
// production). Every missing variable is named in the returned error.
func LoadCredentials(getenv func(string) string) (Credentials, error) {
	var missing []string
	get := func(key string) string {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	cr := Credentials{
		PracticumToken: get(EnvPracticumToken),
		TelegramToken:  get(EnvTelegramToken),
	}
	chat := get(EnvTelegramChatID)
	if len(missing) > 0 {
		return Credentials{}, fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	if strings.HasPrefix(chat, "@") {
		if !validUsername(chat[1:]) {
			return Credentials{}, fmt.Errorf("%s: invalid chat username %q", EnvTelegramChatID, chat)
		}
		cr.ChatUsername = chat
		return cr, nil
	}
	id, err := strconv.ParseInt(chat, 10, 64)
	if err != nil || id == 0 {
		return Credentials{}, fmt.Errorf("%s: invalid chat id %q", EnvTelegramChatID, chat)
	}
	cr.ChatID = id
	return cr, nil
}

// validUsername accepts Telegram public usernames: 5-32 ASCII letters,
// digits and underscores, starting with a letter.
func validUsername(s string) bool {
	if len(s) < 5 || len(s) > 32 {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '_'):
		default:
			return false
		}
	}
	return true
}
