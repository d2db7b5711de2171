package service

import (
	"testing"

	"go-poll-scheduler/modules/poll/dto"

	"github.com/stretchr/testify/assert"
)

var guild = []dto.Member{
	{ID: "1", Roles: []string{"players"}},
	{ID: "2", Roles: []string{"players", "gm"}},
	{ID: "3", Roles: []string{"gm"}},
	{ID: "4"},
}

func TestSelectMembers_Everyone(t *testing.T) {
	got := SelectMembers(&dto.CommandRequest{MentionEveryone: true, Mentions: []string{"9"}, Guild: guild})
	assert.Equal(t, []string{"1", "2", "3", "4"}, got)
}

func TestSelectMembers_MentionsAndRoles(t *testing.T) {
	got := SelectMembers(&dto.CommandRequest{
		Mentions:     []string{"4", "2"},
		RoleMentions: []string{"gm"},
		Guild:        guild,
	})
	assert.Equal(t, []string{"4", "2", "3"}, got)
}

func TestSelectMembers_RoleOnly(t *testing.T) {
	got := SelectMembers(&dto.CommandRequest{RoleMentions: []string{"players"}, Guild: guild})
	assert.Equal(t, []string{"1", "2"}, got)
}

func TestSelectMembers_Nobody(t *testing.T) {
	assert.Empty(t, SelectMembers(&dto.CommandRequest{Guild: guild}))
	assert.Empty(t, SelectMembers(&dto.CommandRequest{RoleMentions: []string{"nobody"}, Guild: guild}))
}
