package rules_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/rules"
)

func ruleNames(list []rules.Rule) []string {
	out := make([]string, 0, len(list))
	for _, rule := range list {
		out = append(out, rule.Name)
	}
	return out
}

func TestFromForm_BuildsRulesInDeclarationOrder(t *testing.T) {
	form := model.FormModel{
		ID: "signup",
		Fields: []model.Field{
			{Name: "nickname", Type: model.FieldTypeString},
			{
				Name:     "email",
				Type:     model.FieldTypeString,
				Format:   "email",
				Required: true,
				Validations: []model.ValidationRule{
					{Kind: model.ValidationRuleMaxLength, Params: map[string]string{"value": "120"}},
				},
			},
			{
				Name: "age",
				Type: model.FieldTypeInteger,
				Validations: []model.ValidationRule{
					{Kind: model.ValidationRuleMin, Params: map[string]string{"value": "18"}},
					{Kind: model.ValidationRuleMax, Params: map[string]string{"value": "130", "exclusive": "true"}},
				},
			},
			{
				Name: "bio",
				Validations: []model.ValidationRule{
					{Kind: model.ValidationRuleNoMarkup},
					{Kind: model.ValidationRulePattern, Params: map[string]string{"pattern": `^\S`, "message": "No leading spaces"}},
				},
			},
		},
	}

	got, order, err := rules.FromForm(form)
	if err != nil {
		t.Fatalf("FromForm: %v", err)
	}

	if diff := cmp.Diff([]string{"email", "age", "bio"}, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	wantNames := map[string][]string{
		"email": {"required", "email", "maxLength"},
		"age":   {"number", "min", "max"},
		"bio":   {"noMarkup", "pattern"},
	}
	gotNames := make(map[string][]string, len(got))
	for name, list := range got {
		gotNames[name] = ruleNames(list)
	}
	if diff := cmp.Diff(wantNames, gotNames); diff != "" {
		t.Fatalf("rule names mismatch (-want +got):\n%s", diff)
	}

	maxAge := got["age"][2]
	if out := maxAge.Check(context.Background(), 130); out.Passed {
		t.Fatalf("expected exclusive max to reject the bound")
	}
	pattern := got["bio"][1]
	out := pattern.Check(context.Background(), " hi")
	if msg := pattern.FailureMessage(out, rules.DefaultMessages(), ""); msg != "No leading spaces" {
		t.Fatalf("unexpected pattern message %q", msg)
	}
}

func TestFromField_RequiredMessageFromMetadata(t *testing.T) {
	list, err := rules.FromField(model.Field{
		Name:     "title",
		Required: true,
		Metadata: map[string]string{"required.message": "Give it a title"},
	})
	if err != nil {
		t.Fatalf("FromField: %v", err)
	}
	out := list[0].Check(context.Background(), "")
	if msg := list[0].FailureMessage(out, nil, ""); msg != "Give it a title" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestFromField_Errors(t *testing.T) {
	cases := []struct {
		name string
		rule model.ValidationRule
		want error
	}{
		{name: "unknown kind", rule: model.ValidationRule{Kind: "luhn"}, want: rules.ErrUnknownKind},
		{name: "bad length", rule: model.ValidationRule{Kind: model.ValidationRuleMinLength, Params: map[string]string{"value": "x"}}, want: rules.ErrInvalidParam},
		{name: "negative length", rule: model.ValidationRule{Kind: model.ValidationRuleMaxLength, Params: map[string]string{"value": "-1"}}, want: rules.ErrInvalidParam},
		{name: "bad bound", rule: model.ValidationRule{Kind: model.ValidationRuleMin, Params: map[string]string{"value": ""}}, want: rules.ErrInvalidParam},
		{name: "bad pattern", rule: model.ValidationRule{Kind: model.ValidationRulePattern, Params: map[string]string{"pattern": "("}}, want: rules.ErrInvalidParam},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := rules.FromField(model.Field{Name: "f", Validations: []model.ValidationRule{tc.rule}})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
