package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBounds_Validate(t *testing.T) {
	tests := []struct {
		name    string
		bounds  Bounds
		wantErr bool
	}{
		{name: "equal bounds are valid", bounds: Bounds{Min: 3, Max: 3}},
		{name: "zero bounds are valid", bounds: Bounds{}},
		{name: "ordered bounds are valid", bounds: Bounds{Min: 2, Max: 4}},
		{name: "inverted bounds are invalid", bounds: Bounds{Min: 5, Max: 4}, wantErr: true},
		{name: "negative min is invalid", bounds: Bounds{Min: -1, Max: 4}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bounds.Validate("themes")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrConfiguration))
				assert.Contains(t, err.Error(), "themes")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDefaultAnalyzeOptions_Valid(t *testing.T) {
	opts := DefaultAnalyzeOptions()

	require.NoError(t, opts.Validate())
	assert.Equal(t, PreferNewest, opts.Prefer)
	assert.Equal(t, 0.7, opts.Selection.Lambda)
	assert.Equal(t, 0.6, opts.Selection.JaccardThreshold)
	assert.True(t, opts.Selection.Diverse)
}

func TestAnalyzeOptions_Validate(t *testing.T) {
	since := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(*AnalyzeOptions)
	}{
		{name: "invalid prefer", mutate: func(o *AnalyzeOptions) { o.Prefer = "sideways" }},
		{name: "diversity above one", mutate: func(o *AnalyzeOptions) { o.Sampling.Diversity = 1.5 }},
		{name: "negative lambda", mutate: func(o *AnalyzeOptions) { o.Selection.Lambda = -0.1 }},
		{name: "jaccard above one", mutate: func(o *AnalyzeOptions) { o.Selection.JaccardThreshold = 2 }},
		{name: "zero max rows", mutate: func(o *AnalyzeOptions) { o.Sampling.MaxRows = 0 }},
		{name: "negative min theme size", mutate: func(o *AnalyzeOptions) { o.Sampling.MinThemeSize = -1 }},
		{name: "zero desired k", mutate: func(o *AnalyzeOptions) { o.Selection.DesiredK = 0 }},
		{name: "since after until", mutate: func(o *AnalyzeOptions) {
			o.History.Since = &since
			o.History.Until = &until
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultAnalyzeOptions()
			tt.mutate(&opts)

			err := opts.Validate()

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestExportOptions_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, DefaultExportOptions().Validate())
	})

	t.Run("inverted subtheme bounds", func(t *testing.T) {
		opts := DefaultExportOptions()
		opts.Subthemes = Bounds{Min: 4, Max: 2}
		assert.ErrorIs(t, opts.Validate(), ErrConfiguration)
	})

	t.Run("inverted source bounds", func(t *testing.T) {
		opts := DefaultExportOptions()
		opts.Sources = Bounds{Min: 9, Max: 1}
		assert.ErrorIs(t, opts.Validate(), ErrConfiguration)
	})

	t.Run("unknown method", func(t *testing.T) {
		opts := DefaultExportOptions()
		opts.Method = "embed"
		assert.ErrorIs(t, opts.Validate(), ErrConfiguration)
	})

	t.Run("zero workers", func(t *testing.T) {
		opts := DefaultExportOptions()
		opts.Workers = 0
		assert.ErrorIs(t, opts.Validate(), ErrConfiguration)
	})

	t.Run("zero relevance top n", func(t *testing.T) {
		opts := DefaultExportOptions()
		opts.RelevanceTopN = 0
		assert.ErrorIs(t, opts.Validate(), ErrConfiguration)
	})

	t.Run("nested analyze options are checked", func(t *testing.T) {
		opts := DefaultExportOptions()
		opts.Analyze.Selection.Lambda = 3
		assert.ErrorIs(t, opts.Validate(), ErrConfiguration)
	})
}

func TestSubthemeOptions(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, DefaultSubthemeOptions().Validate())
	})

	t.Run("derived from export options", func(t *testing.T) {
		export := DefaultExportOptions()
		export.RelevanceTopN = 12
		export.Analyze.Sampling.Diversity = 0.2
		export.Analyze.Prefer = PreferOldest

		opts := export.SubthemeOptions()

		assert.Equal(t, 12, opts.RelevanceTopN)
		assert.Equal(t, export.Analyze.Sampling, opts.Sampling)
		assert.Equal(t, PreferOldest, opts.Prefer)
	})

	tests := []struct {
		name   string
		modify func(*SubthemeOptions)
	}{
		{"zero top n", func(o *SubthemeOptions) { o.RelevanceTopN = 0 }},
		{"diversity above one", func(o *SubthemeOptions) { o.Sampling.Diversity = 1.5 }},
		{"zero max rows", func(o *SubthemeOptions) { o.Sampling.MaxRows = 0 }},
		{"unknown prefer", func(o *SubthemeOptions) { o.Prefer = "middle" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultSubthemeOptions()
			tt.modify(&opts)
			assert.ErrorIs(t, opts.Validate(), ErrConfiguration)
		})
	}
}
