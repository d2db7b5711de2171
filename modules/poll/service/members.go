package service

import (
	"go-poll-scheduler/modules/poll/dto"
)

// SelectMembers resolves who a command polls. @everyone selects the whole
// guild; otherwise the direct mentions come first, followed by every guild
// member holding one of the mentioned roles. Duplicates are dropped and the
// first occurrence keeps its place.
func SelectMembers(req *dto.CommandRequest) []string {
	selected := make([]string, 0, len(req.Mentions))
	seen := make(map[string]struct{})
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		selected = append(selected, id)
	}

	if req.MentionEveryone {
		for _, m := range req.Guild {
			add(m.ID)
		}
		return selected
	}

	for _, id := range req.Mentions {
		add(id)
	}

	if len(req.RoleMentions) == 0 {
		return selected
	}
	roles := make(map[string]struct{}, len(req.RoleMentions))
	for _, r := range req.RoleMentions {
		roles[r] = struct{}{}
	}
	for _, m := range req.Guild {
		for _, r := range m.Roles {
			if _, ok := roles[r]; ok {
				add(m.ID)
				break
			}
		}
	}
	return selected
}
