package report

import (
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	status string
	price  decimal.Decimal
}

func TestGroupCount(t *testing.T) {
	items := []item{{status: "nauja"}, {status: "atlikta"}, {status: "nauja"}, {status: ""}, {status: "vykdoma"}, {status: "atlikta"}, {status: "nauja"}}

	groups := GroupCount(items, func(i item) string { return i.status })

	require.Len(t, groups, 4)
	assert.Equal(t, KeyCount{Key: "nauja", Count: 3}, groups[0])
	assert.Equal(t, KeyCount{Key: "atlikta", Count: 2}, groups[1])
	// ties ordered by key
	assert.Equal(t, KeyCount{Key: "", Count: 1}, groups[2])
	assert.Equal(t, KeyCount{Key: "vykdoma", Count: 1}, groups[3])
}

func TestGroupCount_SumEqualsInputLength(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	keys := []string{"a", "b", "c", "d", ""}

	for n := 0; n < 200; n++ {
		items := make([]string, n)
		for i := range items {
			items[i] = keys[r.IntN(len(keys))]
		}

		groups := GroupCount(items, func(s string) string { return s })

		total := 0
		for _, g := range groups {
			total += g.Count
		}
		assert.Equal(t, n, total)
	}
}

func TestGroupSum(t *testing.T) {
	items := []item{
		{status: "bankui", price: decimal.NewFromInt(200)},
		{status: "kita", price: decimal.NewFromInt(50)},
		{status: "bankui", price: decimal.NewFromInt(150)},
		{status: "teismui", price: decimal.NewFromInt(350)},
	}

	groups := GroupSum(items, func(i item) string { return i.status }, func(i item) decimal.Decimal { return i.price })

	require.Len(t, groups, 3)
	assert.Equal(t, "bankui", groups[0].Key)
	assert.Equal(t, 2, groups[0].Count)
	assert.True(t, groups[0].Total.Equal(decimal.NewFromInt(350)))
	assert.Equal(t, "teismui", groups[1].Key)
	assert.Equal(t, "kita", groups[2].Key)
}

func TestCountsByKeys(t *testing.T) {
	groups := []KeyCount{{Key: "atlikta", Count: 4}, {Key: "other", Count: 9}}

	out := CountsByKeys(groups, []string{"nauja", "atlikta"})

	assert.Equal(t, []KeyCount{{Key: "nauja", Count: 0}, {Key: "atlikta", Count: 4}}, out)
}
