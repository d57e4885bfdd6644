package coord

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		input        string
		wantErr      bool
		wantGroup    string
		wantArtifact string
	}{
		{"com.example:core", false, "com.example", "core"},
		{"org.acme.tools:cli-app", false, "org.acme.tools", "cli-app"},
		{"bzlmod:rules_go", false, "bzlmod", "rules_go"},
		{"nocolon", true, "", ""},
		{":core", true, "", ""},
		{"com.example:", true, "", ""},
		{"a:b:c", true, "", ""},
		{"com example:core", true, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			k, err := ParseKey(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantGroup, k.Group())
			assert.Equal(t, tt.wantArtifact, k.Artifact())
			assert.Equal(t, tt.input, k.String())
		})
	}
}

func TestKeyZeroValue(t *testing.T) {
	var k Key
	assert.True(t, k.IsEmpty())
	assert.Equal(t, "", k.String())
}

func TestNewVersion(t *testing.T) {
	tests := []struct {
		input         string
		wantErr       bool
		wantComps     []int
		wantQualifier string
		wantSnapshot  bool
	}{
		{"1.0", false, []int{1, 0}, "", false},
		{"1.0-SNAPSHOT", false, []int{1, 0}, "", true},
		{"1.0-snapshot", false, []int{1, 0}, "", true},
		{"2.0-release-SNAPSHOT", false, []int{2, 0}, "release", true},
		{"1.2.3-beta-1", false, []int{1, 2, 3}, "beta-1", false},
		{"1.0.0.Final", false, []int{1, 0, 0}, "Final", false},
		{"1.0-20240102.101010-3", false, []int{1, 0}, "20240102.101010-3", true},
		{"${revision}", false, nil, "", false},
		{"", true, nil, "", false},
		{"1.0 beta", true, nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := NewVersion(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, v.String())
			if tt.wantComps == nil {
				assert.True(t, v.IsOpaque())
			} else {
				assert.Equal(t, tt.wantComps, v.Components())
			}
			assert.Equal(t, tt.wantQualifier, v.Qualifier())
			assert.Equal(t, tt.wantSnapshot, v.IsSnapshot())
		})
	}
}

func TestVersionRelease(t *testing.T) {
	assert.Equal(t, "1.0", MustVersion("1.0-SNAPSHOT").Release().String())
	assert.Equal(t, "2.0-release", MustVersion("2.0-release-SNAPSHOT").Release().String())
	assert.Equal(t, "1.0", MustVersion("1.0").Release().String())
	assert.False(t, MustVersion("1.0-SNAPSHOT").Release().IsSnapshot())
}

func TestVersionNextDevelopment(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1.0", "1.1-SNAPSHOT"},
		{"1.0-SNAPSHOT", "1.1-SNAPSHOT"},
		{"1.2.3", "1.2.4-SNAPSHOT"},
		{"1.0-beta-1", "1.0-beta-2-SNAPSHOT"},
		{"2.0-rc9", "2.0-rc10-SNAPSHOT"},
		{"3", "4-SNAPSHOT"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := MustVersion(tt.input).NextDevelopment()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
			assert.True(t, got.IsSnapshot())
		})
	}

	_, err := MustVersion("${revision}").NextDevelopment()
	assert.Error(t, err)
}

func TestVersionNextHotfix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1.0", "1.0.1"},
		{"1", "1.0.1"},
		{"1.0.1", "1.0.2"},
		{"1.2.3.4", "1.2.3.5"},
		{"1.0-SNAPSHOT", "1.0.1"},
		{"1.0.0-beta", "1.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := MustVersion(tt.input).NextHotfix()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestVersionCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.0", "1.0.0", 0},
		{"1.0", "2.0", -1},
		{"1.10", "1.9", 1},
		{"1.0-SNAPSHOT", "1.0", -1},
		{"1.0-beta", "1.0", -1},
		{"1.0-beta-1", "1.0-beta-2", -1},
		{"1.0-beta-2", "1.0-beta-10", -1},
		{"1.0-alpha", "1.0-beta", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, MustVersion(tt.a).Compare(MustVersion(tt.b)))
			assert.Equal(t, -tt.want, MustVersion(tt.b).Compare(MustVersion(tt.a)))
		})
	}
}

func TestVersionSort(t *testing.T) {
	in := []string{"1.10", "1.0-SNAPSHOT", "1.2", "1.0"}
	vs := make([]Version, len(in))
	for i, s := range in {
		vs[i] = MustVersion(s)
	}
	slices.SortFunc(vs, Version.Compare)

	got := make([]string, len(vs))
	for i, v := range vs {
		got[i] = v.String()
	}
	assert.Equal(t, []string{"1.0-SNAPSHOT", "1.0", "1.2", "1.10"}, got)
}

func TestIsSnapshotString(t *testing.T) {
	assert.True(t, IsSnapshotString("1.0-SNAPSHOT"))
	assert.True(t, IsSnapshotString("SNAPSHOT"))
	assert.True(t, IsSnapshotString("1.0-20240102.101010-3"))
	assert.False(t, IsSnapshotString("1.0"))
	assert.False(t, IsSnapshotString("-SNAPSHOT"))
}
