package fallback

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/interview-crawler/internal/model"
)

func TestGenerate_FrontendThree(t *testing.T) {
	qs := Generate(model.CategoryFrontend, 3)
	require.Len(t, qs, 3)

	ids := map[string]bool{}
	for i, q := range qs {
		assert.Equal(t, model.SampleSource, q.Source)
		assert.Equal(t, model.CategoryFrontend, q.Category)
		assert.Equal(t, sampleCompanies[i], q.Company)
		assert.NotEmpty(t, q.Tags)
		assert.False(t, ids[q.ID], "ids are unique")
		ids[q.ID] = true
	}
}

func TestGenerate_Truncation(t *testing.T) {
	assert.Nil(t, Generate(model.CategoryBackend, 0))
	assert.Len(t, Generate(model.CategoryBackend, 100), len(banks[model.CategoryBackend].questions))
}

func TestGenerate_UnknownCategory(t *testing.T) {
	assert.NotContains(t, banks, "区块链开发")
	qs := Generate("区块链开发", 2)
	require.Len(t, qs, 2)
	assert.Equal(t, genericBank.questions[0], qs[0].Question)
	assert.Equal(t, "区块链开发", qs[0].Category)
}

func TestBanks_CoverCategoriesAndLengths(t *testing.T) {
	for _, c := range model.AllCategories() {
		assert.Contains(t, banks, c)
	}
	all := []bank{genericBank}
	for _, b := range banks {
		all = append(all, b)
	}
	for _, b := range all {
		require.NotEmpty(t, b.tags)
		for _, q := range b.questions {
			n := utf8.RuneCountInString(q)
			assert.GreaterOrEqual(t, n, model.MinQuestionLen, q)
			assert.LessOrEqual(t, n, model.MaxQuestionLen, q)
		}
	}
}

func TestGenerate_TagsAreCopies(t *testing.T) {
	qs := Generate(model.CategoryFrontend, 1)
	require.NotEmpty(t, qs[0].Tags)
	qs[0].Tags[0] = "mutated"
	assert.NotEqual(t, "mutated", banks[model.CategoryFrontend].tags[0][0])
}
