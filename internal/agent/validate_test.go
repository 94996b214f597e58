package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const validSceneCode = `from manim import *
from manim_voiceover import VoiceoverScene
from manim_voiceover.services.gtts import GTTSService

class Solution(VoiceoverScene):
    def construct(self):
        self.set_speech_service(GTTSService(lang="tr"))
        title = Text("Adim 1")
        self.play(Write(title))
        self.wait(3)
`

func TestValidateManimCode_Valid(t *testing.T) {
	ok, failed := ValidateManimCode(validSceneCode)

	assert.True(t, ok)
	assert.Empty(t, failed)
}

func TestValidateManimCode_Empty(t *testing.T) {
	ok, failed := ValidateManimCode("   ")

	assert.False(t, ok)
	assert.Equal(t, []string{"empty"}, failed)
}

func TestValidateManimCode_ThreeOfFourPasses(t *testing.T) {
	// No construct method, but imports, class and length still pass.
	code := strings.Replace(validSceneCode, "def construct(self):", "def run(self):", 1)

	ok, failed := ValidateManimCode(code)

	assert.True(t, ok)
	assert.Equal(t, []string{"construct_method"}, failed)
}

func TestValidateManimCode_SyntaxImbalanceIsAdvisory(t *testing.T) {
	// A dangling paren is reported but does not fail validation when
	// the essential checks pass.
	code := strings.Replace(validSceneCode, "self.wait(3)", "self.wait(3", 1)

	ok, failed := ValidateManimCode(code)

	assert.True(t, ok)
	assert.Equal(t, []string{"syntax"}, failed)
}

func TestCheckCodeSyntax(t *testing.T) {
	assert.True(t, checkCodeSyntax(validSceneCode))
	assert.True(t, checkCodeSyntax(`text = Text("kapanmamis ( parantez")`))
	assert.True(t, checkCodeSyntax("x = 1  # yorum (dengesiz\n"))
	assert.False(t, checkCodeSyntax("self.play(Write(title)"))
	assert.False(t, checkCodeSyntax("values = [1, 2, 3"))
	assert.False(t, checkCodeSyntax("self.play)Write("))
}

func TestValidateManimCode_TooManyFailures(t *testing.T) {
	ok, failed := ValidateManimCode("print('hello')")

	assert.False(t, ok)
	assert.Contains(t, failed, "class_definition")
	assert.Contains(t, failed, "construct_method")
	assert.Contains(t, failed, "min_length")
}

func TestValidateSolutionFormat(t *testing.T) {
	valid := "Adım 1: Üçgenin alan formülünü yazalım. Alan = (taban x yükseklik) / 2. " +
		"Adım 2: Verilen değerleri yerine koyarak hesap yapalım ve sonuç olarak 24 buluruz. " +
		"Bu çözüm her adımda formül kullanımını gösterir."

	assert.True(t, validateSolutionFormat(valid))
	assert.False(t, validateSolutionFormat("çok kısa"))
	assert.False(t, validateSolutionFormat(strings.Repeat("x ", 30)))
}

func TestValidateTopicContent(t *testing.T) {
	valid := "Türev konusu: Türevin tanımı bir fonksiyonun anlık değişim oranıdır. " +
		"Bu kavram fizikte hız hesaplarken kullanılır. Örnek olarak f(x) = x^2 fonksiyonunun " +
		"türevi 2x olur. Bu ders boyunca öğrenme hedefimiz türev kurallarını kavramaktır. " +
		"Açıklama için grafikler de çizeceğiz."

	assert.True(t, validateTopicContent(valid))
	assert.False(t, validateTopicContent("kısa içerik"))
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		videoType string
		wantOK    bool
		wantMsg   string
	}{
		{"valid solution", "Bir üçgenin alanını hesaplayın", "solution", true, ""},
		{"valid default type", "Bir üçgenin alanını hesaplayın", "", true, ""},
		{"empty text", "   ", "solution", false, "Text alanı zorunludur"},
		{"invalid type", "Bir üçgenin alanını hesaplayın", "podcast", false, "Geçersiz video tipi. Geçerli tipler: solution, topic, full"},
		{"too short", "kısa", "topic", false, "Text en az 10 karakter olmalıdır"},
		{"too long", strings.Repeat("a", 5001), "topic", false, "Text 5000 karakterden uzun olamaz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := ValidateRequest(tt.text, tt.videoType, 10, 5000)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}
