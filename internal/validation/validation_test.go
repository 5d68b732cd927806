package validation

import (
	"testing"
)

type meetingForm struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Time        string `json:"time" validate:"required,datetime=20060102150405"`
}

type signupForm struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestCheck_ValidStruct_ReturnsNil(t *testing.T) {
	v := New()
	form := meetingForm{
		Title:       "Sprint planning",
		Description: "Plan the next sprint",
		Time:        "20240101090000",
	}
	if got := v.Check(form); got != nil {
		t.Errorf("Check() = %v, want nil", got)
	}
}

func TestCheck_RequiredFields_UsesJSONTagNames(t *testing.T) {
	v := New()
	got := v.Check(meetingForm{})

	if got == nil {
		t.Fatal("Check() = nil, want violations")
	}
	for _, field := range []string{"title", "description", "time"} {
		msgs, ok := got[field]
		if !ok {
			t.Errorf("missing violation for field %q: %v", field, got)
			continue
		}
		want := "The " + field + " field is required."
		if len(msgs) != 1 || msgs[0] != want {
			t.Errorf("messages for %q = %v, want [%q]", field, msgs, want)
		}
	}
}

func TestCheck_DatetimeFormat(t *testing.T) {
	v := New()
	got := v.Check(meetingForm{
		Title:       "Sprint planning",
		Description: "Plan the next sprint",
		Time:        "2024-01-01 09:00:00",
	})

	if got == nil {
		t.Fatal("Check() = nil, want violations")
	}
	msgs := got["time"]
	want := "The time does not match the format YmdHis."
	if len(msgs) != 1 || msgs[0] != want {
		t.Errorf("messages for time = %v, want [%q]", msgs, want)
	}
}

func TestCheck_EmailFormat(t *testing.T) {
	v := New()
	got := v.Check(signupForm{
		Name:     "Taro",
		Email:    "not-an-email",
		Password: "secret1",
	})

	if got == nil {
		t.Fatal("Check() = nil, want violations")
	}
	msgs := got["email"]
	want := "The email must be a valid email address."
	if len(msgs) != 1 || msgs[0] != want {
		t.Errorf("messages for email = %v, want [%q]", msgs, want)
	}
}

func TestCheck_MinLength(t *testing.T) {
	v := New()
	got := v.Check(signupForm{
		Name:     "Taro",
		Email:    "taro@example.com",
		Password: "abc",
	})

	if got == nil {
		t.Fatal("Check() = nil, want violations")
	}
	msgs := got["password"]
	want := "The password must be at least 6 characters."
	if len(msgs) != 1 || msgs[0] != want {
		t.Errorf("messages for password = %v, want [%q]", msgs, want)
	}
}

// 複数の違反があるフィールドはすべての違反が1回のCheckで返る。
func TestCheck_MultipleViolations(t *testing.T) {
	v := New()
	got := v.Check(signupForm{Email: "bad"})

	if got == nil {
		t.Fatal("Check() = nil, want violations")
	}
	if len(got) != 3 {
		t.Errorf("violation fields = %d, want 3 (name, email, password): %v", len(got), got)
	}
}
