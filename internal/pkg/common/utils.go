package common

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// ParseID 解析正整數 ID
func ParseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
