package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "campusconnect:school-1:fees:summary", Key("school-1", "fees", "summary"))
	assert.Equal(t, "campusconnect:school-1:attendance:STU1", Key("school-1", "attendance", " ", "STU1"))
	assert.Equal(t, "campusconnect:school-1:fees:*", Pattern("school-1", "fees"))
}
