package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatTargetRecipient(t *testing.T) {
	assert.True(t, ChatTarget{ThreadID: 3}.IsZero())

	assert.Equal(t, "-1001", ChatTarget{ChatID: -1001}.Recipient())
	assert.Equal(t, "@my_channel", ChatTarget{Username: "@my_channel"}.Recipient())
	assert.Equal(t, "7", ChatTarget{ChatID: 7, Username: "@ignored"}.Recipient())
	assert.False(t, ChatTarget{Username: "@my_channel"}.IsZero())
}
