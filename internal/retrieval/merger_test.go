package retrieval

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/manual-copilot/internal/index"
)

// fakeSearcher serves canned per-unit and cross-manual results and
// records which queries ran.
type fakeSearcher struct {
	byUnit     map[string][]index.ChunkRecord
	all        []index.ChunkRecord
	unitCalls  []string
	allQueried bool
}

func (f *fakeSearcher) QueryUnit(_ context.Context, unit, _ string, k int) ([]index.ChunkRecord, error) {
	f.unitCalls = append(f.unitCalls, unit)
	results := f.byUnit[unit]
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (f *fakeSearcher) QueryAll(_ context.Context, _ string, k int) ([]index.ChunkRecord, error) {
	f.allQueried = true
	results := f.all
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func rec(unit string, page int, text string) index.ChunkRecord {
	return index.ChunkRecord{UnitNumber: unit, Filename: unit + ".pdf", Page: page, Text: text}
}

func TestRetrieve_UnitResultsPrecedeCrossManual(t *testing.T) {
	searcher := &fakeSearcher{
		byUnit: map[string][]index.ChunkRecord{
			"102": {rec("102", 4, "hydraulic hose routing"), rec("102", 7, "hose clamp torque")},
		},
		all: []index.ChunkRecord{rec("55", 2, "hose part catalog"), rec("30", 9, "fitting sizes")},
	}
	merger := NewMerger(searcher, nil)

	records, crossRef, err := merger.Retrieve(context.Background(), "What hose fits unit 102?")
	require.NoError(t, err)

	assert.True(t, crossRef, "\"hose\" is cross-reference vocabulary")
	require.Len(t, records, 4)
	assert.Equal(t, "102", records[0].UnitNumber)
	assert.Equal(t, "102", records[1].UnitNumber)
	assert.Equal(t, "55", records[2].UnitNumber)
	assert.Equal(t, "30", records[3].UnitNumber)
}

func TestRetrieve_NoKeywordsNoUnits_FallsBackToCrossManual(t *testing.T) {
	searcher := &fakeSearcher{
		all: []index.ChunkRecord{rec("55", 1, "startup procedure")},
	}
	merger := NewMerger(searcher, nil)

	records, crossRef, err := merger.Retrieve(context.Background(), "how do I start it")
	require.NoError(t, err)

	assert.False(t, crossRef)
	assert.True(t, searcher.allQueried, "empty accumulator must still trigger cross-manual search")
	assert.Empty(t, searcher.unitCalls)
	require.Len(t, records, 1)
}

func TestRetrieve_UnitHitsWithoutKeywordsSkipCrossManual(t *testing.T) {
	searcher := &fakeSearcher{
		byUnit: map[string][]index.ChunkRecord{
			"102": {rec("102", 1, "operator controls")},
		},
		all: []index.ChunkRecord{rec("55", 1, "unrelated")},
	}
	merger := NewMerger(searcher, nil)

	records, crossRef, err := merger.Retrieve(context.Background(), "how do I start unit 102")
	require.NoError(t, err)

	assert.False(t, crossRef)
	assert.False(t, searcher.allQueried)
	require.Len(t, records, 1)
	assert.Equal(t, "102", records[0].UnitNumber)
}

func TestRetrieve_UnitDetectedButEmpty_FallsBackToCrossManual(t *testing.T) {
	searcher := &fakeSearcher{
		all: []index.ChunkRecord{rec("55", 3, "ignition sequence")},
	}
	merger := NewMerger(searcher, nil)

	records, crossRef, err := merger.Retrieve(context.Background(), "how do I start unit 999")
	require.NoError(t, err)

	assert.False(t, crossRef)
	assert.Equal(t, []string{"999"}, searcher.unitCalls)
	assert.True(t, searcher.allQueried, "no unit-specific results means the safety net runs")
	require.Len(t, records, 1)
}

func TestRetrieve_DedupAndCap(t *testing.T) {
	// The same chunk surfaces from the unit query and the cross-manual
	// query; it must appear once, in its first-seen position.
	shared := rec("102", 4, "oil filter specification 90915-YZZD4")

	var unitResults []index.ChunkRecord
	unitResults = append(unitResults, shared)
	for i := 0; i < 4; i++ {
		unitResults = append(unitResults, rec("102", 10+i, strings.Repeat("u", 60)+string(rune('a'+i))))
	}
	var allResults []index.ChunkRecord
	allResults = append(allResults, shared)
	for i := 0; i < 4; i++ {
		allResults = append(allResults, rec("55", 20+i, strings.Repeat("x", 60)+string(rune('a'+i))))
	}

	searcher := &fakeSearcher{
		byUnit: map[string][]index.ChunkRecord{"102": unitResults, "55": allResults},
		all:    allResults,
	}
	merger := NewMerger(searcher, nil)

	records, crossRef, err := merger.Retrieve(context.Background(), "oil filter for unit 102 and unit 55")
	require.NoError(t, err)
	assert.True(t, crossRef)

	assert.LessOrEqual(t, len(records), 10)
	keys := make(map[string]struct{})
	for _, r := range records {
		key := fmt.Sprintf("%s|%d|%s", r.UnitNumber, r.Page, textPrefix(r.Text, 50))
		_, dup := keys[key]
		assert.False(t, dup, "duplicate (unit, page, prefix) in result set")
		keys[key] = struct{}{}
	}
	assert.Equal(t, shared.Text, records[0].Text, "first-seen position is kept")
}

func TestRetrieve_DedupUsesTextPrefixOnly(t *testing.T) {
	// Two records identical within the first 50 characters count as one.
	base := strings.Repeat("p", 50)
	searcher := &fakeSearcher{
		byUnit: map[string][]index.ChunkRecord{
			"102": {rec("102", 4, base+" tail one"), rec("102", 4, base+" tail two")},
		},
	}
	merger := NewMerger(searcher, nil)

	records, _, err := merger.Retrieve(context.Background(), "unit 102 greasing")
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestBuildContext(t *testing.T) {
	records := []index.ChunkRecord{
		rec("102", 4, "check valve clearance"),
		rec("55", 1, "belt routing diagram"),
	}

	got := BuildContext(records)

	assert.Contains(t, got, "[Unit 102 | 102.pdf | Page 4]\ncheck valve clearance")
	assert.Contains(t, got, "[Unit 55 | 55.pdf | Page 1]\nbelt routing diagram")
	assert.Contains(t, got, blockSeparator)
}

func TestBuildContext_Empty(t *testing.T) {
	assert.Equal(t, noContextPlaceholder, BuildContext(nil))
}

func TestSources_TruncatesText(t *testing.T) {
	long := strings.Repeat("m", 400)
	sources := Sources([]index.ChunkRecord{rec("102", 4, long), rec("102", 5, "short")})

	require.Len(t, sources, 2)
	assert.Len(t, sources[0].Text, sourceSnippetLen)
	assert.Equal(t, "short", sources[1].Text)
}
