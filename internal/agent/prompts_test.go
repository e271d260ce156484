package agent

import (
	"strings"
	"testing"
)

func TestSystemPromptVariants(t *testing.T) {
	grounded := systemPrompt("[ข้อมูลที่ 1 จาก: CKD - eGFR]:\neGFR ต่ำกว่า 60 ติดต่อกัน 3 เดือน\n\n")
	if !strings.Contains(grounded, "eGFR ต่ำกว่า 60") {
		t.Fatal("grounded prompt must embed the context block")
	}
	if !strings.Contains(grounded, "risk/likelihood") {
		t.Fatal("grounded prompt must demand risk language")
	}

	scoped := systemPrompt("")
	if strings.Contains(scoped, "Reference material") {
		t.Fatal("scoped prompt must not reference context")
	}
	if !strings.Contains(scoped, "lab") {
		t.Fatal("scoped prompt must invite lab values")
	}
}

func TestClassifyInstructionListsLabels(t *testing.T) {
	instruction := classifyInstruction([]string{"symptom", "general_health"})

	for _, label := range []string{"- symptom", "- general_health"} {
		if !strings.Contains(instruction, label) {
			t.Fatalf("instruction missing %q:\n%s", label, instruction)
		}
	}
	if !strings.Contains(instruction, "only the label") {
		t.Fatal("instruction must demand a bare label response")
	}
}
