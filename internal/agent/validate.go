package agent

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	classPatterns = []*regexp.Regexp{
		regexp.MustCompile(`class\s+\w+\s*\(\s*VoiceoverScene\s*\)`),
		regexp.MustCompile(`class\s+\w+\s*\(\s*Scene\s*\)`),
		regexp.MustCompile(`class\s+Solution`),
	}
	constructPattern = regexp.MustCompile(`def\s+construct\s*\(\s*self\s*\)`)
)

// ValidateManimCode runs the essential structure checks against generated
// code. At least three of the four checks must pass. The syntax balance
// check is advisory: it shows up in the failed list for diagnostics but
// never changes the outcome. Returns the failed check names.
func ValidateManimCode(code string) (bool, []string) {
	if strings.TrimSpace(code) == "" {
		return false, []string{"empty"}
	}

	hasImports := strings.Contains(code, "from manim import") ||
		strings.Contains(code, "import manim") ||
		strings.Contains(code, "VoiceoverScene") ||
		strings.Contains(code, "Scene")

	hasClass := false
	for _, pattern := range classPatterns {
		if pattern.MatchString(code) {
			hasClass = true
			break
		}
	}

	hasConstruct := constructPattern.MatchString(code)
	hasMinLength := len(code) > 100

	var failed []string
	passed := 0
	for _, check := range []struct {
		name string
		ok   bool
	}{
		{"imports", hasImports},
		{"class_definition", hasClass},
		{"construct_method", hasConstruct},
		{"min_length", hasMinLength},
	} {
		if check.ok {
			passed++
		} else {
			failed = append(failed, check.name)
		}
	}

	if !checkCodeSyntax(code) {
		failed = append(failed, "syntax")
	}

	return passed >= 3, failed
}

// checkCodeSyntax is a balance heuristic for parens, brackets and braces
// outside string literals and comments. Python itself is the only real
// arbiter, so an imbalance is reported but never fails validation.
func checkCodeSyntax(code string) bool {
	var paren, bracket, brace int
	var quote byte
	for i := 0; i < len(code); i++ {
		ch := code[i]
		if quote != 0 {
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"':
			quote = ch
		case '#':
			for i < len(code) && code[i] != '\n' {
				i++
			}
		case '(':
			paren++
		case ')':
			paren--
		case '[':
			bracket++
		case ']':
			bracket--
		case '{':
			brace++
		case '}':
			brace--
		}
		if paren < 0 || bracket < 0 || brace < 0 {
			return false
		}
	}
	return paren == 0 && bracket == 0 && brace == 0
}

// validateSolutionFormat checks that generated solution text looks like a
// structured step-by-step answer.
func validateSolutionFormat(solution string) bool {
	if len(solution) < 50 {
		return false
	}

	lower := strings.ToLower(solution)
	indicators := 0
	if containsAny(lower, "adım", "çözüm", "problem", "analiz") {
		indicators++
	}
	if containsAny(lower, "matematik", "formül", "hesap", "sonuç") {
		indicators++
	}
	if len(strings.Fields(solution)) > 20 {
		indicators++
	}

	return indicators >= 2
}

// validateTopicContent checks that generated topic text looks like
// educational material.
func validateTopicContent(content string) bool {
	if len(content) < 100 {
		return false
	}

	lower := strings.ToLower(content)
	indicators := 0
	if containsAny(lower, "tanım", "kavram", "örnek", "açıklama") {
		indicators++
	}
	if containsAny(lower, "konu", "ders", "öğrenme", "eğitim") {
		indicators++
	}
	if len(strings.Fields(content)) > 30 {
		indicators++
	}
	if strings.Contains(content, ":") || strings.Contains(content, "?") {
		indicators++
	}

	return indicators >= 2
}

func containsAny(s string, words ...string) bool {
	for _, word := range words {
		if strings.Contains(s, word) {
			return true
		}
	}
	return false
}

// ValidVideoTypes enumerates the pipelines a request may select.
var ValidVideoTypes = []string{"solution", "topic", "full"}

// ValidateRequest checks an incoming creation request. The returned
// message is user-facing Turkish, empty when the request is valid.
func ValidateRequest(text, videoType string, minLen, maxLen int) (bool, string) {
	if strings.TrimSpace(text) == "" {
		return false, "Text alanı zorunludur"
	}

	if videoType != "" {
		valid := false
		for _, t := range ValidVideoTypes {
			if videoType == t {
				valid = true
				break
			}
		}
		if !valid {
			return false, fmt.Sprintf("Geçersiz video tipi. Geçerli tipler: %s", strings.Join(ValidVideoTypes, ", "))
		}
	}

	if len(text) > maxLen {
		return false, fmt.Sprintf("Text %d karakterden uzun olamaz", maxLen)
	}
	if len(text) < minLen {
		return false, fmt.Sprintf("Text en az %d karakter olmalıdır", minLen)
	}

	return true, ""
}
