package transcache

import (
	"regexp"
	"strings"
)

// LanguageNames maps base language codes to human-readable names, used
// where a provider takes a prompt rather than a code.
var LanguageNames = map[string]string{
	"ar": "Arabic",
	"bg": "Bulgarian",
	"bn": "Bengali",
	"ca": "Catalan",
	"cs": "Czech",
	"da": "Danish",
	"de": "German",
	"el": "Greek",
	"en": "English",
	"es": "Spanish",
	"fa": "Persian",
	"fi": "Finnish",
	"fr": "French",
	"he": "Hebrew",
	"hi": "Hindi",
	"hr": "Croatian",
	"hu": "Hungarian",
	"id": "Indonesian",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"lt": "Lithuanian",
	"lv": "Latvian",
	"ms": "Malay",
	"nb": "Norwegian Bokmål",
	"nl": "Dutch",
	"pl": "Polish",
	"pt": "Portuguese",
	"ro": "Romanian",
	"ru": "Russian",
	"sk": "Slovak",
	"sl": "Slovenian",
	"sr": "Serbian",
	"sv": "Swedish",
	"sw": "Swahili",
	"th": "Thai",
	"tl": "Tagalog",
	"tr": "Turkish",
	"uk": "Ukrainian",
	"ur": "Urdu",
	"vi": "Vietnamese",
	"zh": "Chinese",
}

// regionNames refines LanguageNames for locales where the region changes the script.
var regionNames = map[string]string{
	"zh-CN": "Chinese (Simplified)",
	"zh-TW": "Chinese (Traditional)",
	"pt-BR": "Portuguese (Brazil)",
	"pt-PT": "Portuguese (Portugal)",
	"en-US": "English (United States)",
	"en-GB": "English (United Kingdom)",
}

// AutoDetect is the source language code meaning "let the provider decide".
const AutoDetect = "auto"

// NormalizeLang canonicalizes a language code: trimmed, lower-case base,
// '-' separator, upper-case region ("ZH_cn" → "zh-CN").
func NormalizeLang(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	code = strings.ReplaceAll(code, "_", "-")
	base, region, ok := strings.Cut(code, "-")
	base = strings.ToLower(base)
	if !ok || region == "" {
		return base
	}
	return base + "-" + strings.ToUpper(region)
}

// langPattern matches a normalized code: 2-3 letter base, optional region or script.
var langPattern = regexp.MustCompile(`^[a-z]{2,3}(-[A-Z0-9]{2,8})?$`)

// ValidLang reports whether a normalized code is well formed.
func ValidLang(code string) bool {
	return langPattern.MatchString(code)
}

// BaseLang extracts the base language code (e.g., "en" from "en-US").
func BaseLang(code string) string {
	base, _, _ := strings.Cut(NormalizeLang(code), "-")
	return base
}

// GetLanguageName returns the human-readable name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(code string) string {
	norm := NormalizeLang(code)
	if name, ok := regionNames[norm]; ok {
		return name
	}
	if name, ok := LanguageNames[BaseLang(norm)]; ok {
		return name
	}
	return code
}
