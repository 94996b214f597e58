package agent

import (
	"strings"
	"text/template"
)

// Prompt templates mirror the production Turkish prompts. They render
// with text/template so embedded code and braces pass through untouched.

var solutionPrompt = template.Must(template.New("solution").Parse(`
Verilen soruyu inceleyin ve asagidaki adimlara gore cozumleyin:

1. Adim Adim Cozumleme:
   - Soruyu adim adim cozun, her adimi ayri ayri yazin ve detaylandirin.

2. Iki Farkli Kisimda Aciklama:
   - Formuller ve Cozumler: kullanilan formulleri ve hesaplamalari net bir sekilde belirtin.
   - Betimleyici Aciklamalar: hic bilmeyen birine anlatir gibi, adimlari detayli aciklayin.
     Grafik veya gorsel gerekiyorsa cizim adimlarini da betimleyin.

3. Detayli Aciklamalar:
   - Her adimda kullanilan terimleri ve kavramlari basit bir dille tanimlayin.

Soru: {{.Content}}
`))

var topicPrompt = template.Must(template.New("topic").Parse(`
Sen deneyimli bir ogretmensin. Verilen konuyu bir ders anlatimi formatinda acikla:

1. Tanim ve Temel Kavramlar: konunun tanimini yap, temel kavramlari basit bir dille acikla.
2. Detayli Aciklama: konuyu adim adim, ornekler uzerinden anlat.
3. Ornekler: en az iki cozulmus ornek ver.
4. Ozet: konunun ana noktalarini maddeler halinde ozetle.

Anlatim Turkce olmali ve egitim videosu senaryosu gibi akici yazilmali.

Konu: {{.Content}}
`))

var manimPrompt = template.Must(template.New("manim").Parse(`
{{.Content}}

Yukaridaki metni incele.

Sen, Manim kutuphanesini kullanarak verilen metindeki cozumu adim adim bir video
haline getirecek uzman bir gelistiricisin.

### Yapilmasi Gerekenler:
1. Verilen cozumu adim adim takip et, her adimi net bir sekilde belirt.
2. Gerektiginde grafikler cizerek aciklamalari destekle.
3. Her adimin ardindan FadeOut efekti kullanarak onceki elemanlarin kaybolmasini sagla.
4. Her adimda sesli anlatim icin voiceover kullan.
5. En az 5 adimdan olussun ve her islem en az 3 saniye surmeli.
6. Elemanlari 0.8 scale ile kullan ve ortala.
7. Disaridan gorsel veya dosya alma.

### Teknik Gereksinimler:
- from manim import *
- from manim_voiceover import VoiceoverScene
- from manim_voiceover.services.gtts import GTTSService
- class Solution(VoiceoverScene) tanimla ve def construct(self) icinde
  self.set_speech_service(GTTSService(lang="tr")) ile basla.
- Turkce karakterler iceren metinlerde r"" kullan.
- Sadece calisir Python kodu uret, aciklama metni ekleme.
`))

var sceneCombinationPrompt = template.Must(template.New("combine").Parse(`
# Manim Sahne Birlestirme

Asagidaki sahneleri tek bir akici video haline getir. Her sahne arasinda yumusak
gecisler kullan ve tutarli bir gorsel stil koru.

## Birlestirilecek Sahneler:
{{.Scenes}}

## Birlestirme Kurallari:
1. Tum sahneleri tek bir class icinde topla.
2. Sahne gecislerinde FadeOut/FadeIn kullan.
3. Renk paletini tutarli tut.
4. Ses senkronizasyonunu koru.

## Cikti Formati:
Tek bir Solution class'i icinde tum sahneleri method olarak organize et.
Sadece kod uret, aciklama ekleme.
`))

var errorFixPrompt = template.Must(template.New("fix").Parse(`
# Manim Kod Hata Duzeltme

Sen, Manim kod hatalarini analiz edip duzelten uzman bir gelistiricisin.
Verilen hatali kodu analiz edip tamamen duzeltilmis halini uretmelisin.

## Kurallar:
1. Class adi Solution olmali ve VoiceoverScene'den inherit etmeli.
2. Tum importlari ekle (manim, manim_voiceover, GTTSService).
3. Syntax hatasi olmamali, modern Manim syntax kullan.
4. Turkce karakterlerde r"" kullan.
5. Aciklama metni ve markdown formati ekleme.

**Hatali Kod:**
{{.Code}}

**Hata Mesaji:**
{{.Error}}

**Duzeltilmis Kod (sadece kod, hicbir aciklama yok):**
`))

type promptData struct {
	Content string
	Code    string
	Error   string
	Scenes  string
}

func renderPrompt(tmpl *template.Template, data promptData) string {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		// Templates are static and data is plain strings, execution cannot fail.
		panic(err)
	}
	return sb.String()
}

// sanitizeErrorMessage normalizes render errors before prompt embedding.
// Double quotes become single quotes so quoted fragments do not break
// the surrounding prompt structure.
func sanitizeErrorMessage(msg string) string {
	return strings.ReplaceAll(msg, `"`, `'`)
}
