package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScope_Rooms(t *testing.T) {
	req := require.New(t)

	req.Equal(RoomKey("exam:42"), ExamScope("42").Room())
	req.Equal(RoomKey("exam:42:proctor"), ExamScope("42").PrivilegedRoom())
	req.Equal(RoomKey("classroom:3"), ClassroomScope("3").Room())
	req.Equal(RoomKey("classroom:3:monitor"), ClassroomScope("3").PrivilegedRoom())
	req.Equal("exam:42", ExamScope("42").String())
}

func TestParseRoomKey(t *testing.T) {
	tests := []struct {
		key        RoomKey
		scope      Scope
		privileged bool
		wantErr    bool
	}{
		{key: "exam:42", scope: ExamScope("42")},
		{key: "exam:42:proctor", scope: ExamScope("42"), privileged: true},
		{key: "classroom:3", scope: ClassroomScope("3")},
		{key: "classroom:3:monitor", scope: ClassroomScope("3"), privileged: true},
		{key: "exam:42:monitor", wantErr: true},
		{key: "classroom:3:proctor", wantErr: true},
		{key: "lobby:1", wantErr: true},
		{key: "exam", wantErr: true},
		{key: "exam:", wantErr: true},
		{key: "exam:1:proctor:x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			req := require.New(t)
			scope, privileged, err := ParseRoomKey(tt.key)
			if tt.wantErr {
				req.Error(err)
				return
			}
			req.NoError(err)
			req.Equal(tt.scope, scope)
			req.Equal(tt.privileged, privileged)
		})
	}
}

func TestParseRoomKey_Round_Trip(t *testing.T) {
	req := require.New(t)
	for _, scope := range []Scope{ExamScope("a-1"), ClassroomScope("b_2")} {
		parsed, privileged, err := ParseRoomKey(scope.PrivilegedRoom())
		req.NoError(err)
		req.True(privileged)
		req.Equal(scope, parsed)
	}
}

func TestRole(t *testing.T) {
	req := require.New(t)

	role, err := ParseRole("proctor")
	req.NoError(err)
	req.Equal(RoleProctor, role)
	_, err = ParseRole("admin")
	req.Error(err)

	req.False(RoleStudent.Privileged())
	req.True(RoleTeacher.Privileged())
	req.True(RoleProctor.Privileged())
	req.True(RoleMonitor.Privileged())
}

func TestSeverity(t *testing.T) {
	req := require.New(t)

	req.Less(SeverityLow.Rank(), SeverityMedium.Rank())
	req.Less(SeverityMedium.Rank(), SeverityHigh.Rank())
	req.Zero(Severity("critical").Rank())

	sev, err := ParseSeverity("medium")
	req.NoError(err)
	req.Equal(SeverityMedium, sev)
	_, err = ParseSeverity("")
	req.Error(err)
}

func TestAlert_Reduced_Hides_Details(t *testing.T) {
	req := require.New(t)
	a := Alert{
		ExamID: "7", StudentID: "s1", Kind: KindMultipleFaces, Severity: SeverityHigh,
		Description: "two faces", Metadata: map[string]any{"faces": 2},
	}

	reduced := a.Reduced()

	req.Equal(ReducedAlert{ExamID: "7", StudentID: "s1", Kind: KindMultipleFaces, Severity: SeverityHigh}, reduced)
	req.Equal(ExamScope("7"), a.Scope())
}
