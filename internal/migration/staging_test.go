package migration

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/premigrate/internal/conf"
	"github.com/tphakala/premigrate/internal/datastore/entities"
	"github.com/tphakala/premigrate/internal/legacy"
	"github.com/tphakala/premigrate/internal/logger"
)

var testLogger = logger.NewSlogLogger(io.Discard, logger.LogLevelError, time.UTC)

func recording(id, parent, version, created string) legacy.Recording {
	r := legacy.Recording{RecordingUID: id}
	if parent != "" {
		r.ParentRecUID = &parent
	}
	if version != "" {
		r.RecordingVersion = &version
	}
	if created != "" {
		r.Created = &created
	}
	return r
}

func ids(records []legacy.Recording) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.RecordingUID
	}
	return out
}

func TestStagingIndex_Sort(t *testing.T) {
	t.Parallel()

	records := func() []legacy.Recording {
		return []legacy.Recording{
			recording("b", "", "2", "01/03/2024 10:00"),
			recording("a", "", "1", "01/03/2024 11:00"),
			recording("c", "", "1", "01/03/2024 09:00"),
			recording("d", "", "x", "01/03/2024 08:00"),
		}
	}

	tests := []struct {
		tieBreak string
		want     []string
	}{
		{conf.TieBreakVersionAsc, []string{"c", "a", "b", "d"}},
		{conf.TieBreakVersionDesc, []string{"d", "b", "c", "a"}},
		{conf.TieBreakCreatedAsc, []string{"d", "c", "b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.tieBreak, func(t *testing.T) {
			t.Parallel()

			deps := &Deps{Log: testLogger, Location: time.UTC}
			s := NewStagingIndex(deps, WithTieBreak(tt.tieBreak))
			rows := records()
			s.Sort(rows)
			assert.Equal(t, tt.want, ids(rows))
		})
	}
}

func TestStagingIndex_SortFallsBackToID(t *testing.T) {
	t.Parallel()

	s := NewStagingIndex(&Deps{Log: testLogger, Location: time.UTC})
	rows := []legacy.Recording{
		recording("z", "", "1", ""),
		recording("m", "", "1", ""),
		recording("a", "", "1", ""),
	}
	s.Sort(rows)
	assert.Equal(t, []string{"a", "m", "z"}, ids(rows))
}

func TestStagingIndex_TieBreakFromDeps(t *testing.T) {
	t.Parallel()

	s := NewStagingIndex(&Deps{Log: testLogger, TieBreak: conf.TieBreakCreatedAsc})
	assert.Equal(t, conf.TieBreakCreatedAsc, s.tieBreak)

	s = NewStagingIndex(&Deps{Log: testLogger}, WithTieBreak(""))
	assert.Equal(t, conf.TieBreakVersionAsc, s.tieBreak)
}

func TestGroupKey(t *testing.T) {
	t.Parallel()

	root := recording("r1", "r1", "1", "")
	child := recording("r2", "r1", "2", "")
	orphan := recording("r3", "", "1", "")

	assert.Equal(t, "r1", groupKey(&root))
	assert.True(t, isRoot(&root))
	assert.Equal(t, "r1", groupKey(&child))
	assert.False(t, isRoot(&child))
	assert.Equal(t, "r3", groupKey(&orphan))
	assert.True(t, isRoot(&orphan))
}

func TestStagingIndex_InsertOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		tieBreak string
		rows     []legacy.Recording
		want     []string
	}{
		{
			name:     "shared parent first",
			tieBreak: conf.TieBreakVersionAsc,
			rows: []legacy.Recording{
				recording("r3", "r1", "3", ""),
				recording("x1", "x1", "1", ""),
				recording("r2", "r1", "2", ""),
				recording("r1", "r1", "1", ""),
			},
			want: []string{"r1", "x1", "r2", "r3"},
		},
		{
			name:     "root without parent or version",
			tieBreak: conf.TieBreakVersionAsc,
			rows: []legacy.Recording{
				recording("p1", "", "", ""),
				recording("c2", "p1", "2", ""),
			},
			want: []string{"p1", "c2"},
		},
		{
			name:     "single child under version-desc",
			tieBreak: conf.TieBreakVersionDesc,
			rows: []legacy.Recording{
				recording("p1", "", "1", ""),
				recording("c2", "p1", "2", ""),
			},
			want: []string{"p1", "c2"},
		},
		{
			name:     "versions of one root under version-desc",
			tieBreak: conf.TieBreakVersionDesc,
			rows: []legacy.Recording{
				recording("c2", "r1", "2", ""),
				recording("r1", "r1", "1", ""),
				recording("c3", "r1", "3", ""),
			},
			want: []string{"r1", "c3", "c2"},
		},
		{
			name:     "parent pointer to a later version",
			tieBreak: conf.TieBreakVersionAsc,
			rows: []legacy.Recording{
				recording("c", "b", "1", ""),
				recording("b", "a", "2", ""),
				recording("a", "", "3", ""),
			},
			want: []string{"a", "b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewStagingIndex(&Deps{Log: testLogger, Location: time.UTC}, WithTieBreak(tt.tieBreak))
			assert.Equal(t, tt.want, ids(s.InsertOrder(tt.rows)))
		})
	}
}

func TestStagingIndex_Representatives(t *testing.T) {
	t.Parallel()

	day := func(d int) time.Time { return time.Date(2024, time.March, d, 10, 0, 0, 0, time.UTC) }
	staged := []entities.TempRecording{
		{RecordingID: "r3", GroupKey: "r1", Version: 3, CreatedAt: day(3)},
		{RecordingID: "r2", GroupKey: "r1", Version: 2, CreatedAt: day(2)},
		{RecordingID: "x1", GroupKey: "x1", Version: 1, CreatedAt: day(1)},
	}

	tests := []struct {
		tieBreak string
		want     []string
	}{
		{conf.TieBreakVersionAsc, []string{"r2", "x1"}},
		{conf.TieBreakVersionDesc, []string{"r3", "x1"}},
		{conf.TieBreakCreatedAsc, []string{"r2", "x1"}},
	}

	for _, tt := range tests {
		t.Run(tt.tieBreak, func(t *testing.T) {
			t.Parallel()

			s := NewStagingIndex(&Deps{Log: testLogger}, WithTieBreak(tt.tieBreak))
			reps := s.representatives(staged)
			got := make([]string, len(reps))
			for i, r := range reps {
				got[i] = r.RecordingID
			}
			// The root r1 was never staged; the chain still gets one
			// representative from the members that were.
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandParticipantLinks(t *testing.T) {
	t.Parallel()

	caseID := "case-1"
	r1 := recording("r1", "r1", "1", "")
	r1.CaseUID = &caseID
	defendants, witnesses := "p2", "p1, p1 ,,p3"
	r1.Defendants = &defendants
	r1.WitnessNames = &witnesses

	links := ExpandParticipantLinks([]legacy.Recording{r1})
	assert.Equal(t, []ParticipantLink{
		{RecordingID: "r1", CaseID: caseID, ParticipantID: "p2"},
		{RecordingID: "r1", CaseID: caseID, ParticipantID: "p1"},
		{RecordingID: "r1", CaseID: caseID, ParticipantID: "p3"},
	}, links)
}

func TestPortalStatus(t *testing.T) {
	t.Parallel()

	yes, no := "True", "False"
	assert.Equal(t, "ACTIVE", portalStatus(&legacy.User{LoginEnabled: &yes, EmailConfirmed: &yes}))
	assert.Equal(t, "INVITATION_SENT", portalStatus(&legacy.User{LoginEnabled: &no, Invited: &yes}))
	assert.Equal(t, "INACTIVE", portalStatus(&legacy.User{LoginEnabled: &yes, EmailConfirmed: &no}))
}
