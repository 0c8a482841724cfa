package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/clementg/consoleback/internal/driver"
	"github.com/clementg/consoleback/internal/model"
)

func TestBackupDue(t *testing.T) {
	now := time.Now()
	hourAgo := now.Add(-time.Hour)
	justNow := now.Add(-time.Minute)

	tests := []struct {
		name    string
		console model.Console
		want    bool
	}{
		{
			name:    "never run is due immediately",
			console: model.Console{BackupInterval: model.Duration(30 * time.Minute)},
			want:    true,
		},
		{
			name: "interval elapsed",
			console: model.Console{
				BackupInterval: model.Duration(30 * time.Minute),
				LastBackupAt:   &hourAgo,
			},
			want: true,
		},
		{
			name: "interval not yet elapsed",
			console: model.Console{
				BackupInterval: model.Duration(30 * time.Minute),
				LastBackupAt:   &justNow,
			},
			want: false,
		},
		{
			name:    "zero interval never due",
			console: model.Console{BackupInterval: 0},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, backupDue(tt.console, now))
		})
	}
}

func TestCheckDue(t *testing.T) {
	now := time.Now()
	hourAgo := now.Add(-time.Hour)

	due := model.Console{
		ChecksEnabled: true,
		CheckInterval: model.Duration(30 * time.Minute),
		LastCheckAt:   &hourAgo,
	}
	assert.True(t, checkDue(due, now))

	disabled := due
	disabled.ChecksEnabled = false
	assert.False(t, checkDue(disabled, now))

	neverRun := model.Console{ChecksEnabled: true, CheckInterval: model.Duration(time.Hour)}
	assert.True(t, checkDue(neverRun, now))
}

func TestTick_SkipsDisabledConsoles(t *testing.T) {
	env := newTestEnv(t)
	env.validSession(t)

	env.addConsole(t, "Office")
	if err := env.reg.Update("Office", func(c *model.Console) error {
		c.Enabled = false
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	env.orch.Tick(context.Background(), time.Now())
	env.orch.Wait()

	env.drv.AssertNotCalled(t, "Retrieve", mock.Anything, mock.Anything, mock.Anything)
	env.drv.AssertNotCalled(t, "Probe", mock.Anything, mock.Anything, mock.Anything)
}

func TestTick_DispatchesDueBackup(t *testing.T) {
	env := newTestEnv(t)
	env.validSession(t)
	console := env.addConsole(t, "Office")

	// Checks off so the backup and check events cannot contend for the
	// console lock within one tick.
	if err := env.reg.Update("Office", func(c *model.Console) error {
		c.ChecksEnabled = false
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	env.drv.On("Retrieve", mock.Anything, console.BackupURL, mock.Anything).
		Return(&driver.File{Name: "backup.unf", Data: []byte("ok")}, nil).Once()

	// Never run, so the backup is due on the first tick.
	env.orch.Tick(context.Background(), time.Now())
	env.orch.Wait()

	env.drv.AssertExpectations(t)
	updated, _ := env.reg.Get("Office")
	assert.NotNil(t, updated.LastBackupAt)
}

func TestTick_DispatchesDueCheck(t *testing.T) {
	env := newTestEnv(t)
	env.validSession(t)
	console := env.addConsole(t, "Office")

	now := time.Now()
	if err := env.reg.Update("Office", func(c *model.Console) error {
		c.LastBackupAt = &now
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	env.drv.On("Probe", mock.Anything, console.BackupURL, mock.Anything).
		Return(nil).Once()

	env.orch.Tick(context.Background(), now)
	env.orch.Wait()

	env.drv.AssertExpectations(t)
	updated, _ := env.reg.Get("Office")
	assert.NotNil(t, updated.LastCheckAt)
}

func TestTick_NothingDueIsQuiet(t *testing.T) {
	env := newTestEnv(t)
	env.validSession(t)
	env.addConsole(t, "Office")

	now := time.Now()
	if err := env.reg.Update("Office", func(c *model.Console) error {
		c.LastBackupAt = &now
		c.LastCheckAt = &now
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	env.orch.Tick(context.Background(), now.Add(time.Minute))
	env.orch.Wait()

	env.drv.AssertNotCalled(t, "Retrieve", mock.Anything, mock.Anything, mock.Anything)
	env.drv.AssertNotCalled(t, "Probe", mock.Anything, mock.Anything, mock.Anything)
}
