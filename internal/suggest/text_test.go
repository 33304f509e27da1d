package suggest

import (
	"strings"
	"testing"
)

func TestCountWords(t *testing.T) {
	if got := countWords("uno dos  tres\ncuatro"); got != 4 {
		t.Fatalf("expected 4 words, got %d", got)
	}
	if got := countWords("   "); got != 0 {
		t.Fatalf("expected 0 words, got %d", got)
	}
}

func TestNormalizeText(t *testing.T) {
	got := normalizeText("¿Qué HARÁS mañana?")
	if !strings.Contains(got, "que haras manana") {
		t.Fatalf("expected diacritics stripped and lowercased, got %q", got)
	}
}

func TestHookScoreRhetoricalQuestion(t *testing.T) {
	score, isHook := hookScore("¿Por qué sufrimos tanto?")
	if !isHook {
		t.Fatalf("expected a hook, score=%.2f", score)
	}
	if score < 0.35 {
		t.Fatalf("expected at least the rhetorical bonus, got %.2f", score)
	}
}

func TestHookScoreStatistic(t *testing.T) {
	score, isHook := hookScore("El 90% de las personas vive asi")
	if !isHook {
		t.Fatalf("expected statistic head to qualify as hook, score=%.2f", score)
	}
}

func TestHookScoreImpactWordAloneIsNotEnough(t *testing.T) {
	score, isHook := hookScore("hola hermanos buenos dias a todos los presentes aqui reunidos")
	if isHook {
		t.Fatalf("impact word alone should stay below threshold, score=%.2f", score)
	}
	if score != 0.20 {
		t.Fatalf("expected only the impact bonus, got %.2f", score)
	}
}

func TestHookScoreExclamationCountsRunes(t *testing.T) {
	plain, _ := hookScore("Extasis ya! luego continuamos hablando de muchas cosas mas")
	accented, _ := hookScore("Éxtasis ya! luego continuamos hablando de muchas cosas mas")
	if accented != plain {
		t.Fatalf("accents must not change the exclamation bonus: plain=%.2f accented=%.2f", plain, accented)
	}

	score, _ := hookScore("¡Así cambió todo aquel día! y nada volvio a ser igual desde entonces")
	if score < 0.15 {
		t.Fatalf("long exclamation clause must earn the bonus, got %.2f", score)
	}
}

func TestHookScoreEmpty(t *testing.T) {
	score, isHook := hookScore("   ")
	if isHook || score != 0.0 {
		t.Fatalf("expected zero for empty head, got score=%.2f hook=%v", score, isHook)
	}
}

func TestEndsSentence(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"Esto termina aqui.", true},
		{"Y entonces dijo...", true},
		{"¡Gloria a Dios!", true},
		{"una frase sin cierre", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := endsSentence(tc.text); got != tc.want {
			t.Fatalf("endsSentence(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestIsCleanStart(t *testing.T) {
	if !isCleanStart(0, false, "lo que sea") {
		t.Fatalf("transcript start must always be clean")
	}
	if !isCleanStart(600, true, "lo que sea") {
		t.Fatalf("gap above threshold must be clean")
	}
	if !isCleanStart(100, true, "Dios habla hoy") {
		t.Fatalf("capitalised start must be clean")
	}
	if isCleanStart(100, true, "dios habla hoy") {
		t.Fatalf("small gap with lowercase start must be rough")
	}
}

func TestIsCleanEnd(t *testing.T) {
	if !isCleanEnd(0, true, "Se acabo.") {
		t.Fatalf("sentence-final punctuation must be clean")
	}
	if !isCleanEnd(0, false, "sin puntuacion") {
		t.Fatalf("transcript end must always be clean")
	}
	if !isCleanEnd(800, true, "sin puntuacion") {
		t.Fatalf("gap above threshold must be clean")
	}
	if isCleanEnd(100, true, "sin puntuacion") {
		t.Fatalf("small gap without punctuation must be rough")
	}
}
