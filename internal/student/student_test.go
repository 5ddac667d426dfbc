package student

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryFieldIsAddressable(t *testing.T) {
	var rec Record
	for _, f := range Fields() {
		require.True(t, rec.Set(f, "v-"+string(f)), "field %s", f)
	}
	for _, f := range Fields() {
		assert.Equal(t, "v-"+string(f), rec.Get(f))
	}
	assert.Len(t, rec.Values(), len(Fields()))
}

func TestParseFieldRejectsUnknownNames(t *testing.T) {
	f, err := ParseField("rollNo")
	require.NoError(t, err)
	assert.Equal(t, RollNo, f)

	_, err = ParseField("rollno")
	assert.Error(t, err)

	var rec Record
	assert.False(t, rec.Set(Field("nickname"), "x"))
}

func TestStepsCoverAllFields(t *testing.T) {
	total := 0
	for step := 1; step <= 4; step++ {
		fields := StepFields(step)
		assert.NotEmpty(t, fields, "step %d", step)
		total += len(fields)
	}
	assert.Equal(t, len(Fields()), total)
	assert.Equal(t, 1, RollNo.Step())
	assert.Equal(t, 4, BloodGroup.Step())
}

func TestRequiredFields(t *testing.T) {
	required := RequiredFields()
	assert.Contains(t, required, Name)
	assert.Contains(t, required, RollNo)
	assert.NotContains(t, required, ResidentialAddress3)
	assert.NotContains(t, required, LocalGuardianAddress3)
	assert.NotContains(t, required, Allergies)
	assert.NotContains(t, required, HealthProblems)
	assert.Len(t, required, len(Fields())-4)
}

func TestFilter(t *testing.T) {
	records := []Record{{Name: "Asha"}, {Name: "Bala"}}

	got := Filter(records, Name, "as")
	require.Len(t, got, 1)
	assert.Equal(t, "Asha", got[0].Name)

	assert.Len(t, Filter(records, Name, ""), 2)

	got = Filter(records, Name, "BAL")
	require.Len(t, got, 1)
	assert.Equal(t, "Bala", got[0].Name)

	assert.Empty(t, Filter(records, Name, "zz"))
}

func TestFilterByOtherKey(t *testing.T) {
	records := []Record{{Name: "Asha", RollNo: "21CS001"}, {Name: "Bala", RollNo: "21EE014"}}
	got := Filter(records, RollNo, "ee")
	require.Len(t, got, 1)
	assert.Equal(t, "Bala", got[0].Name)
}
