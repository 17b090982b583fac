package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fanpilot/fanpilot/internal/ec"
	"github.com/fanpilot/fanpilot/internal/orchestrator"
	"github.com/stretchr/testify/assert"
)

func createTestPersistence(t *testing.T) Persistence {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "fanpilot.db")
	p := NewPersistence(dbPath)
	assert.NoError(t, p.Init())
	return p
}

func TestSaveAndLoadLastDirective(t *testing.T) {
	// GIVEN
	p := createTestPersistence(t)
	directive := orchestrator.Directive{
		Kind:      orchestrator.DirectiveRunProgram,
		Program:   "Silent",
		Alternate: true,
	}

	// WHEN
	err := p.SaveLastDirective(directive)
	assert.NoError(t, err)

	// THEN
	loaded, err := p.LoadLastDirective()
	assert.NoError(t, err)
	assert.Equal(t, directive, loaded)
}

func TestLastDirectiveIsReplaced(t *testing.T) {
	// GIVEN
	p := createTestPersistence(t)
	first := orchestrator.Directive{
		Kind: orchestrator.DirectiveFixedMode,
		Mode: ec.FanModePerformance,
	}
	second := orchestrator.Directive{
		Kind:    orchestrator.DirectiveRunProgram,
		Program: "Quiet",
	}

	// WHEN
	assert.NoError(t, p.SaveLastDirective(first))
	assert.NoError(t, p.SaveLastDirective(second))

	// THEN
	loaded, err := p.LoadLastDirective()
	assert.NoError(t, err)
	assert.Equal(t, second, loaded)
}

func TestLoadLastDirectiveWithoutData(t *testing.T) {
	// GIVEN
	p := createTestPersistence(t)

	// WHEN
	_, err := p.LoadLastDirective()

	// THEN
	assert.Error(t, err)
}

func TestPowerTransitionLog(t *testing.T) {
	// GIVEN
	p := createTestPersistence(t)
	base := time.Now()

	// WHEN
	assert.NoError(t, p.AppendPowerTransition(false, base))
	assert.NoError(t, p.AppendPowerTransition(true, base.Add(1*time.Minute)))

	// THEN
	transitions, err := p.LoadPowerTransitions()
	assert.NoError(t, err)
	assert.Len(t, transitions, 2)
	assert.False(t, transitions[0].OnFullPower)
	assert.True(t, transitions[1].OnFullPower)
}

func TestLoadPowerTransitionsWithoutData(t *testing.T) {
	// GIVEN
	p := createTestPersistence(t)

	// WHEN
	transitions, err := p.LoadPowerTransitions()

	// THEN
	assert.NoError(t, err)
	assert.Empty(t, transitions)
}
