package common

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// ParseJSONBytes 解析 JSON 位元組切片到結構體
func ParseJSONBytes(data []byte, v interface{}) error {
	return decodeJSON(bytes.NewReader(data), v)
}

func decodeJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	if dec.More() {
		return fmt.Errorf("unexpected extra JSON data")
	}
	return nil
}

// ToJSON 將結構體轉換為 JSON 字符串
func ToJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ToJSONBytes 將結構體轉換為 JSON 位元組
func ToJSONBytes(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}
