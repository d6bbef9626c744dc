package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{10, 20, 30, 40})

	assert.Equal(t, 25.0, s.Mean)
	assert.Equal(t, 25.0, s.Median)
	assert.Equal(t, 10.0, s.Min)
	assert.Equal(t, 40.0, s.Max)
	// Sample stddev of {10,20,30,40}: sqrt((225+25+25+225)/3)
	assert.InDelta(t, 12.909944, s.Stddev, 1e-6)
}

func TestSummarizeOddCount(t *testing.T) {
	s := Summarize([]float64{3, 1, 2})
	assert.Equal(t, 2.0, s.Median)
	assert.Equal(t, 2.0, s.Mean)
}

func TestSummarizeSingleValue(t *testing.T) {
	s := Summarize([]float64{42})
	assert.Equal(t, 42.0, s.Mean)
	assert.Equal(t, 42.0, s.Median)
	assert.Zero(t, s.Stddev)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}
