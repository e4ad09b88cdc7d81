package mailer_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/glt-tools/glt/pkg/domain/model"
	"github.com/glt-tools/glt/pkg/infra/mailer"
)

func TestNew(t *testing.T) {
	t.Run("requires host", func(t *testing.T) {
		_, err := mailer.New("", 587, "", "", true)
		gt.Error(t, err)
	})

	t.Run("valid config", func(t *testing.T) {
		m := gt.R1(mailer.New("smtp.example.com", 587, "reports", "hunter2", true)).NoError(t)
		gt.V(t, m.Port).Equal(587)
	})
}

func TestSendRejectsBadAddresses(t *testing.T) {
	m := gt.R1(mailer.New("smtp.example.com", 587, "", "", true)).NoError(t)

	err := m.Send(context.Background(), &model.Email{
		From:     "not an address",
		To:       []string{"team@example.com"},
		Subject:  "weekly report",
		TextBody: "hello",
	})
	gt.Error(t, err)
}

func TestDryRun(t *testing.T) {
	var d mailer.DryRun
	gt.NoError(t, d.Send(context.Background(), &model.Email{
		From:     "glt@example.com",
		To:       []string{"team@example.com"},
		Subject:  "weekly report",
		TextBody: "hello",
	}))
}
