package models

import "testing"

func TestIsValidSubscription(t *testing.T) {
	if !IsValidSubscription(SubscriptionTrial) || !IsValidSubscription(SubscriptionPremium) {
		t.Error("expected trial and premium to be valid subscription types")
	}
	if IsValidSubscription("gold") {
		t.Error("expected unknown subscription type to be invalid")
	}
}

func TestIsValidLeadStage(t *testing.T) {
	for _, s := range []LeadStage{LeadStageNew, LeadStageEngaged, LeadStageHot, LeadStageConverted} {
		if !IsValidLeadStage(s) {
			t.Errorf("expected stage %q to be valid", s)
		}
	}
	if IsValidLeadStage("lost") {
		t.Error("expected unknown stage to be invalid")
	}
}

func TestValidateIncoming(t *testing.T) {
	if err := ValidateIncoming(42, "привет"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateIncoming(0, "привет"); err != ErrInvalidUserID {
		t.Errorf("expected ErrInvalidUserID, got %v", err)
	}
	if err := ValidateIncoming(42, ""); err != ErrEmptyMessage {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
}
