package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "field" or "member").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		switch code {
		case "illegal_expression":
			msg = "プロパティ参照が直接のフィールドアクセスではありません"
		case "duplicate_member":
			msg = "ドキュメントのフィールド名が重複しています"
		case "invalid_argument":
			msg = "引数が不正です"
		}
	default: // "en"
		switch code {
		case "illegal_expression":
			msg = "property reference is not a direct field access"
		case "duplicate_member":
			msg = "duplicate document field name"
		case "invalid_argument":
			msg = "invalid argument"
		}
	}
	if msg == "" {
		return code
	}
	if f := data["field"]; f != "" {
		msg += ": " + strings.TrimSpace(f)
	}
	return msg
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
