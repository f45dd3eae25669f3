// Package sanitize содержит чистые функции нормализации пользовательского ввода
// перед сохранением в хранилище.
package sanitize

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Text убирает HTML‑теги, переводы строк и табуляцию, схлопывает пробелы и обрезает края.
// Сущности не декодируются, одиночные '<' и '>' экранируются, поэтому результат
// не содержит разметки и повторный вызов его не меняет.
func Text(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := false
	for {
		tt := z.Next()
		// io.EOF или незакрытый тег в конце строки
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.StartTagToken, html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "script" || string(name) == "style" {
				skip = tt == html.StartTagToken
			}
			b.WriteByte(' ')
		case html.TextToken:
			if !skip {
				b.Write(z.Raw())
			}
		}
	}
	return angleEscaper.Replace(strings.Join(strings.Fields(b.String()), " "))
}

var angleEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// Flag приводит значение чекбокса или булева поля к "1" или "0".
func Flag(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "0", "false", "off", "no":
		return "0"
	case "on", "yes":
		return "1"
	}
	if b, err := strconv.ParseBool(s); err == nil {
		if b {
			return "1"
		}
		return "0"
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if n == 0 {
			return "0"
		}
	}
	return "1"
}

// Email обрезает пробелы и приводит адрес к нижнему регистру.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Login приводит имя пользователя к виду, в котором оно хранится:
// нижний регистр, только латиница, цифры, '_' и '-'.
func Login(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
