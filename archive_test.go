package jagged

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func joinedJSON(t *testing.T, parts []Content) []string {
	t.Helper()
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = mustJSON(t, p)
	}
	return out
}

func TestArchive(t *testing.T) {
	s := NewMemoryStore()
	a, err := Create(s, "foo/bar", jaggedInts(), ModeWriteFail, WithPartitionLength(2), WithCompressor("gzip"))
	require.NoError(t, err)
	assert.Equal(t, "foo/bar", a.Path())
	assert.Equal(t, 3, a.Length())
	assert.Equal(t, 2, a.NumPartitions())
	assert.Equal(t, []int{2, 1}, a.Meta().Partitions)
	assert.Equal(t, `<jagged.StoredArray path="foo/bar" length=3 partitions=2>`, a.Info())

	b, err := Open(s, "/foo//bar/", ModeRead)
	require.NoError(t, err)
	assert.True(t, SameLayout(a.Form(), b.Form()))
	assert.Equal(t, "gzip", b.Meta().Compressor.ID)

	parts, err := b.ReadAll()
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"[[1,2,3],[]]", "[[4,5]]"}, joinedJSON(t, parts)); diff != "" {
		t.Errorf("partitions mismatch (-want +got):\n%s", diff)
	}

	require.Error(t, b.Append(jaggedInts()))

	c, err := Open(s, "foo/bar", ModeReadWrite)
	require.NoError(t, err)
	require.NoError(t, c.Append(NewListOffsetArray(NewIndex64([]int64{0, 1}), NumpyOf[int64](6))))
	assert.Equal(t, 4, c.Length())

	err = c.Append(jaggedFloats())
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, 4, c.Length())

	c, err = Open(s, "foo/bar", ModeRead)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 1}, c.Meta().Partitions)
}

func TestArchiveReadRange(t *testing.T) {
	s := NewMemoryStore()
	a, err := Create(s, "", NumpyOf[int64](0, 1, 2, 3, 4, 5, 6), ModeWrite, WithPartitionLength(3))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 1}, a.Meta().Partitions)

	cases := []struct {
		start, stop int
		want        []string
	}{
		{0, 7, []string{"[0,1,2]", "[3,4,5]", "[6]"}},
		{2, 4, []string{"[2]", "[3]"}},
		{4, 5, []string{"[4]"}},
		{-2, 100, []string{"[5]", "[6]"}},
		{5, 2, nil},
	}
	for _, c := range cases {
		parts, err := a.ReadRange(c.start, c.stop)
		require.NoError(t, err)
		var got []string
		if len(parts) > 0 {
			got = joinedJSON(t, parts)
		}
		assert.Equal(t, c.want, got, "[%d:%d]", c.start, c.stop)
	}
}

func TestArchiveModes(t *testing.T) {
	s := NewMemoryStore()
	_, err := Open(s, "x", ModeRead)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = Open(s, "x", ModeReadWrite)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = Open(s, "x", PersistenceMode("q"))
	assert.Error(t, err)
	_, err = Create(s, "x", jaggedInts(), ModeRead)
	assert.Error(t, err)

	a, err := Open(s, "x", ModeReadWriteCreate)
	require.NoError(t, err)
	assert.Nil(t, a.Meta())
	assert.Equal(t, `<jagged.StoredArray path="x" empty>`, a.Info())
	parts, err := a.ReadRange(0, 10)
	require.NoError(t, err)
	assert.Empty(t, parts)

	_, err = Create(s, "x", jaggedInts(), ModeWriteFail)
	require.NoError(t, err)
	_, err = Create(s, "x", jaggedInts(), ModeWriteFail)
	assert.Error(t, err)

	// "w" starts over
	a, err = Create(s, "x", NumpyOf(1.5), ModeWrite)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Length())
	assert.Equal(t, "NumpyArray", a.Form().ClassName())

	_, err = Open(s, "a/../b", ModeReadWriteCreate)
	assert.Error(t, err)
}

func TestArchiveLazyPartitions(t *testing.T) {
	cache, err := NewLRUCache(8)
	require.NoError(t, err)
	s := NewMemoryStore()
	_, err = Create(s, "recs", records(), ModeWrite)
	require.NoError(t, err)

	a, err := Open(s, "recs", ModeRead, WithArrayCache(cache))
	require.NoError(t, err)
	part, err := a.Partition(0)
	require.NoError(t, err)
	assert.Equal(t, "VirtualArray", part.ClassName())
	assert.Equal(t, "[2.2,3.3]", mustJSON(t, mustSelect(t, part, SliceField{"y"}, SliceAt{2})))

	_, err = a.Partition(1)
	assert.Error(t, err)
}

func TestArchiveAttributesAndGroups(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, CreateGroup(s, ""))
	require.NoError(t, CreateGroup(s, "events"))
	a, err := Create(s, "events/hits", jaggedFloats(), ModeWrite)
	require.NoError(t, err)
	_, err = Create(s, "events/run", NumpyOf[int32](1, 2), ModeWrite)
	require.NoError(t, err)

	attrs, err := a.Attributes()
	require.NoError(t, err)
	assert.Empty(t, attrs)
	require.NoError(t, a.SetAttributes(Attributes{"units": "GeV"}))
	attrs, err = a.Attributes()
	require.NoError(t, err)
	assert.Equal(t, "GeV", attrs["units"])

	cm, err := Consolidate(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"events/hits", "events/run"}, cm.Arrays())
	assert.Contains(t, cm.Metadata, "events/.jgroup")
	assert.Contains(t, cm.Metadata, "events/hits/.jattrs")

	// the consolidated document survives an archive round trip
	var buf bytes.Buffer
	require.NoError(t, WriteMemoryStore(&buf, s))
	read, err := ReadMemoryStore(&buf)
	require.NoError(t, err)
	assert.Equal(t, s.Keys(), read.Keys())
	again, err := OpenConsolidated(read)
	require.NoError(t, err)
	assert.Equal(t, cm.Arrays(), again.Arrays())

	hits, err := Open(read, "events/hits", ModeRead)
	require.NoError(t, err)
	parts, err := hits.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{mustJSON(t, jaggedFloats())}, joinedJSON(t, parts))
}

func TestPath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"foo", "foo"},
		{"/foo//bar/", "foo/bar"},
		{`foo\bar`, "foo/bar"},
	}
	for _, c := range cases {
		p, err := NewPath(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, p.String(), c.in)
	}
	for _, bad := range []string{".", "foo/../bar", "./foo"} {
		_, err := NewPath(bad)
		assert.Error(t, err, bad)
	}

	p, _ := NewPath("a/b/c")
	head, rest := p.Shift()
	assert.Equal(t, "a", head)
	assert.Equal(t, "b/c", rest.String())
	joined := rest.Join(".jarray")
	assert.Equal(t, "b/c/.jarray", joined.String())
	assert.Equal(t, "b/c", rest.String())
}

func TestProjectPartitions(t *testing.T) {
	got := projectPartitions([]int{3, 3, 1}, 2, 7)
	want := []partitionProjection{
		{PartitionIX: 0, Start: 2, Stop: 3, OutStart: 0},
		{PartitionIX: 1, Start: 0, Stop: 3, OutStart: 1},
		{PartitionIX: 2, Start: 0, Stop: 1, OutStart: 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("projection mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, projectPartitions([]int{3}, 3, 3))

	assert.Equal(t, [][2]int{{0, 5}}, partitionRanges(5, 0))
	assert.Equal(t, [][2]int{{0, 2}, {2, 4}, {4, 5}}, partitionRanges(5, 2))
	assert.Equal(t, [][2]int{{0, 0}}, partitionRanges(0, 2))
}
