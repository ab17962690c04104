package wizard

import (
	"testing"

	"github.com/MapleStore/CatalogBot/internal/models"
)

func TestStepsAfter(t *testing.T) {
	got := stepsAfter(models.WizardProduct, models.StepColor, models.StepAdditionalImages)
	want := []models.Step{models.StepMainImage, models.StepAdditionalImages}
	if len(got) != len(want) {
		t.Fatalf("stepsAfter = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stepsAfter = %v, want %v", got, want)
		}
	}

	if got := stepsAfter(models.WizardProduct, models.StepName, models.StepName); len(got) != 0 {
		t.Errorf("stepsAfter same step = %v, want empty", got)
	}
}

func TestRetractableRefsSkipsUnrecordedSteps(t *testing.T) {
	sess := models.NewSession("op", models.WizardProduct)
	sess.PromptRefs[models.StepMainImage] = "msg-img"

	refs := RetractableRefs(sess, []models.Step{models.StepMainImage, models.StepAdditionalImages})
	if len(refs) != 1 || refs[0] != "msg-img" {
		t.Errorf("refs = %v, want [msg-img]", refs)
	}
}
