package intake

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSteps_Validators(t *testing.T) {
	steps := DefaultSteps()
	require.Len(t, steps, 3)

	full := FormData{
		ProjectName: "Acme",
		Description: "Build site",
		Services:    NewServiceSet(ServiceWebsite),
		Budget:      Budget10kTo25k,
		Timeline:    Timeline3To4,
	}

	tests := []struct {
		name string
		step int
		form FormData
		want bool
	}{
		{name: "details complete", step: 0, form: full, want: true},
		{name: "details missing name", step: 0, form: FormData{Description: "x"}, want: false},
		{name: "details blank description", step: 0, form: FormData{ProjectName: "Acme", Description: " \t\n"}, want: false},
		{name: "services selected", step: 1, form: full, want: true},
		{name: "services empty", step: 1, form: EmptyForm(), want: false},
		{name: "services nil", step: 1, form: FormData{}, want: false},
		{name: "budget and timeline", step: 2, form: full, want: true},
		{name: "budget only", step: 2, form: FormData{Budget: Budget50kAndAbove}, want: false},
		{name: "timeline only", step: 2, form: FormData{Timeline: TimelineSixAndLonger}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, steps[tt.step].Validate(tt.form))
		})
	}
}

func TestDefaultSteps_Metadata(t *testing.T) {
	steps := DefaultSteps()
	for i, s := range steps {
		assert.Equal(t, i+1, s.ID)
		assert.NotEmpty(t, s.Title)
		assert.NotEmpty(t, s.Description)
		assert.NotEmpty(t, s.Fields)
	}
	assert.Equal(t, "Budget & Timeline", steps[2].Title)
}

func TestValidateAll(t *testing.T) {
	steps := DefaultSteps()

	failed, ok := ValidateAll(steps, FormData{ProjectName: "Acme", Description: "Site"})
	assert.False(t, ok)
	assert.Equal(t, 2, failed)

	failed, ok = ValidateAll(steps, FormData{
		ProjectName: "Acme",
		Description: "Site",
		Services:    NewServiceSet(ServiceBrand),
		Budget:      Budget5kTo10k,
		Timeline:    Timeline1To2,
	})
	assert.True(t, ok)
	assert.Zero(t, failed)
}

func TestParseBudgetAndTimeline(t *testing.T) {
	b, err := ParseBudget(" 50000+ ")
	require.NoError(t, err)
	assert.Equal(t, Budget50kAndAbove, b)
	assert.Equal(t, "$50,000+", b.Label())

	b, err = ParseBudget("")
	require.NoError(t, err)
	assert.Equal(t, BudgetUnset, b)

	_, err = ParseBudget("cheap")
	assert.ErrorIs(t, err, ErrInvalidValue)

	tl, err := ParseTimeline("5-6")
	require.NoError(t, err)
	assert.Equal(t, "5-6 months", tl.Label())

	_, err = ParseTimeline("7-8")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestParseField(t *testing.T) {
	f, err := ParseField("projectName")
	require.NoError(t, err)
	assert.Equal(t, FieldProjectName, f)

	_, err = ParseField("project_name")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestFormData_JSON(t *testing.T) {
	form := FormData{
		ProjectName: "Acme",
		Description: "Build site",
		Services:    NewServiceSet(ServiceMarketing, ServiceWebsite),
		Budget:      Budget25kTo50k,
		Timeline:    Timeline1To2,
	}

	data, err := json.Marshal(form)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"services":["Website Development","Marketing"]`)
	assert.Contains(t, string(data), `"budget":"25000-50000"`)

	var decoded FormData
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, form, decoded)
}

func TestServiceSet_ListPutsUnknownNamesLast(t *testing.T) {
	s := NewServiceSet("Zebra", ServiceBrand, "Alpha")
	assert.Equal(t, []string{ServiceBrand, "Alpha", "Zebra"}, s.List())
}

func TestNewReference(t *testing.T) {
	ref := NewReference("Acme Web Site!")
	assert.True(t, strings.HasPrefix(ref, "acme-web-site-"), ref)
	assert.Len(t, ref, len("acme-web-site-")+8)

	assert.True(t, strings.HasPrefix(NewReference("   "), "project-"))
	assert.NotEqual(t, NewReference("a"), NewReference("a"))
}

func TestSimulatedBackend(t *testing.T) {
	form := FormData{ProjectName: "Acme"}

	t.Run("accepts after latency", func(t *testing.T) {
		start := time.Now()
		r, err := SimulatedBackend{Latency: 20 * time.Millisecond}.Submit(context.Background(), form)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
		assert.True(t, strings.HasPrefix(r.Reference, "acme-"))
		assert.False(t, r.ReceivedAt.IsZero())
	})

	t.Run("fails when configured", func(t *testing.T) {
		_, err := SimulatedBackend{Fail: true}.Submit(context.Background(), form)
		assert.ErrorIs(t, err, ErrSimulatedFailure)
	})

	t.Run("honours cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := SimulatedBackend{Latency: time.Hour}.Submit(ctx, form)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestController_WithSimulatedBackendAndClock(t *testing.T) {
	dismissed := make(chan DismissReason, 1)
	c := New(SimulatedBackend{Latency: 10 * time.Millisecond},
		WithDismissDelay(20*time.Millisecond),
		WithOnDismiss(func(r DismissReason) { dismissed <- r }),
	)

	require.NoError(t, c.UpdateField(FieldProjectName, "Acme"))
	require.NoError(t, c.UpdateField(FieldDescription, "Build site"))
	require.True(t, c.Advance())
	require.NoError(t, c.UpdateField(FieldServices, NewServiceSet(ServiceMarketing)))
	require.True(t, c.Advance())
	require.NoError(t, c.UpdateField(FieldBudget, Budget5kTo10k))
	require.NoError(t, c.UpdateField(FieldTimeline, Timeline1To2))
	require.True(t, c.Submit())

	select {
	case r := <-dismissed:
		assert.Equal(t, DismissCompleted, r)
	case <-time.After(testWait):
		t.Fatal("wizard was never dismissed")
	}

	s := c.State()
	assert.Equal(t, StatusIdle, s.Status)
	assert.True(t, s.Form.IsEmpty())
}
