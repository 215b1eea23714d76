package primitives

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanBuilderBuildsValidPlan(t *testing.T) {
	plan, err := NewPlanBuilder("bringup").
		Resource("power").Describe("main rail").
		Resource("bus").After("power").
		Resource("dma").After("bus").ReleaseTimeout(50 * time.Millisecond).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "bringup", plan.ID)
	require.Len(t, plan.Resources, 3)
	assert.Equal(t, "main rail", plan.Resources["power"].Description)
	assert.Equal(t, []string{"bus"}, plan.Resources["dma"].After)
	assert.Equal(t, 50*time.Millisecond, plan.Resources["dma"].ReleaseTimeout)
}

func TestPlanBuilderRevisitsResource(t *testing.T) {
	plan, err := NewPlanBuilder("bringup").
		Resource("bus").
		Resource("power").
		Resource("bus").After("power").
		Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"power"}, plan.Resources["bus"].After)
}

func TestPlanBuilderRejectsInvalidPlan(t *testing.T) {
	_, err := NewPlanBuilder("bringup").
		Resource("dma").After("missing").
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown resource")
}
