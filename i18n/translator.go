// Package i18n renders human messages for structural issue codes and service
// error categories.
package i18n

import "sync"

// Translator retrieves localized messages for issue codes and error
// categories. data provides optional metadata to embed in the message (for
// example, "path" or "status").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"parse_error":    "the response is not valid JSON",
		"envelope":       "the response has no collection of items",
		"invalid_link":   "the response contains an invalid link",
		"invalid_type":   "invalid type",
		"invalid_format": "invalid format",
		"duplicate_key":  "duplicate key",
		"truncated":      "the response is too large",
		"required":       "a required field is missing",
		"unauthorized":   "Unauthorized",
		"forbidden":      "Resource forbidden",
		"not_found":      "Resource not found",
		"client_error":   "client error",
		"server_error":   "server error",
		"network":        "network error",
		"parser":         "the response could not be decoded",
		"unknown":        "Unknown error",
	},
	"ja": {
		"parse_error":    "レスポンスが不正なJSONです",
		"envelope":       "レスポンスに項目のコレクションがありません",
		"invalid_link":   "レスポンスに不正なリンクが含まれています",
		"invalid_type":   "型が不正です",
		"invalid_format": "形式が不正です",
		"duplicate_key":  "キーが重複しています",
		"truncated":      "レスポンスが大きすぎます",
		"required":       "必須フィールドがありません",
		"unauthorized":   "認証されていません",
		"forbidden":      "アクセスが禁止されています",
		"not_found":      "リソースが見つかりません",
		"client_error":   "クライアントエラー",
		"server_error":   "サーバーエラー",
		"network":        "ネットワークエラー",
		"parser":         "レスポンスを解析できませんでした",
		"unknown":        "不明なエラー",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	if p := data["path"]; p != "" {
		msg += " (" + p + ")"
	}
	return msg
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
