package api

import (
	"context"
	"testing"
	"time"
)

func TestCreatePrivateChatReturnsExisting(t *testing.T) {
	chats := newFakeChatRepository()
	now := time.Now()
	chats.conversations["conv-ab"] = ConversationDoc{Type: ConversationPrivate, CreatedAt: now}
	chats.members["m1"] = MemberDoc{ConversationId: "conv-ab", UserId: "a", Role: RoleMember}
	chats.members["m2"] = MemberDoc{ConversationId: "conv-ab", UserId: "b", Role: RoleMember}

	service := NewMembershipService(chats)
	conversation, err := service.CreatePrivateChat(context.Background(), User{Id: "a"}, "b")
	if err != nil {
		t.Fatal(err)
	}

	if conversation.Id != "conv-ab" {
		t.Errorf("conversation id = %q, want existing conv-ab", conversation.Id)
	}
	if len(chats.conversations) != 1 {
		t.Errorf("conversation count = %d, want 1", len(chats.conversations))
	}
	if len(chats.members) != 2 {
		t.Errorf("member count = %d, want 2", len(chats.members))
	}
}

func TestCreatePrivateChatIgnoresGroupsAndOtherPairs(t *testing.T) {
	chats := newFakeChatRepository()
	// a group containing both users and a private chat with someone else
	chats.conversations["group-1"] = ConversationDoc{Type: ConversationGroup}
	chats.members["g1"] = MemberDoc{ConversationId: "group-1", UserId: "a", Role: RoleAdmin}
	chats.members["g2"] = MemberDoc{ConversationId: "group-1", UserId: "b", Role: RoleMember}
	chats.conversations["conv-ac"] = ConversationDoc{Type: ConversationPrivate}
	chats.members["m1"] = MemberDoc{ConversationId: "conv-ac", UserId: "a", Role: RoleMember}
	chats.members["m2"] = MemberDoc{ConversationId: "conv-ac", UserId: "c", Role: RoleMember}

	service := NewMembershipService(chats)
	conversation, err := service.CreatePrivateChat(context.Background(), User{Id: "a"}, "b")
	if err != nil {
		t.Fatal(err)
	}

	if conversation.Id == "group-1" || conversation.Id == "conv-ac" {
		t.Fatalf("reused conversation %q instead of creating a new private chat", conversation.Id)
	}
	if len(chats.conversations) != 3 {
		t.Errorf("conversation count = %d, want 3", len(chats.conversations))
	}

	members, _ := chats.MembersOf(context.Background(), conversation.Id)
	if len(members) != 2 {
		t.Fatalf("new private chat has %d members, want 2", len(members))
	}
	for _, member := range members {
		if member.Role != RoleMember {
			t.Errorf("member %s role = %q, want member", member.UserId, member.Role)
		}
	}
}

func TestCreateGroup(t *testing.T) {
	chats := newFakeChatRepository()
	service := NewMembershipService(chats)

	conversation, err := service.CreateGroup(context.Background(), User{Id: "a"}, "Team", "the team", []string{"b", "c"})
	if err != nil {
		t.Fatal(err)
	}

	if conversation.Type != ConversationGroup || conversation.Name != "Team" {
		t.Errorf("conversation = %s %q, want GROUP Team", conversation.Type, conversation.Name)
	}

	members, _ := chats.MembersOf(context.Background(), conversation.Id)
	if len(members) != 3 {
		t.Fatalf("member count = %d, want 3", len(members))
	}
	roles := make(map[string]string)
	for _, member := range members {
		roles[member.UserId] = member.Role
	}
	if roles["a"] != RoleAdmin {
		t.Errorf("creator role = %q, want admin", roles["a"])
	}
	if roles["b"] != RoleMember || roles["c"] != RoleMember {
		t.Errorf("member roles = %q/%q, want member/member", roles["b"], roles["c"])
	}
}

func TestCreateGroupGuestCreator(t *testing.T) {
	chats := newFakeChatRepository()
	service := NewMembershipService(chats)

	conversation, err := service.CreateGroup(context.Background(), User{Id: "g", IsGuest: true}, "Team", "", []string{"b"})
	if err != nil {
		t.Fatal(err)
	}

	members, _ := chats.MembersOf(context.Background(), conversation.Id)
	for _, member := range members {
		if member.UserId == "g" && member.Role != RoleGuest {
			t.Errorf("guest creator role = %q, want guest", member.Role)
		}
	}
}

func TestCreateGroupValidation(t *testing.T) {
	chats := newFakeChatRepository()
	service := NewMembershipService(chats)

	if _, err := service.CreateGroup(context.Background(), User{Id: "a"}, "   ", "", []string{"b"}); err != ErrEmptyGroupName {
		t.Errorf("empty name err = %v, want ErrEmptyGroupName", err)
	}
	if _, err := service.CreateGroup(context.Background(), User{Id: "a"}, "Team", "", nil); err != ErrNoMembers {
		t.Errorf("no members err = %v, want ErrNoMembers", err)
	}
	if len(chats.conversations) != 0 {
		t.Error("rejected group was still created")
	}
}

func TestCreateGroupSkipsCreatorInMemberList(t *testing.T) {
	chats := newFakeChatRepository()
	service := NewMembershipService(chats)

	conversation, err := service.CreateGroup(context.Background(), User{Id: "a"}, "Team", "", []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}

	members, _ := chats.MembersOf(context.Background(), conversation.Id)
	if len(members) != 2 {
		t.Fatalf("member count = %d, want 2 (creator not duplicated)", len(members))
	}
}

func TestUpdateConversationPatch(t *testing.T) {
	chats := newFakeChatRepository()
	chats.conversations["group-1"] = ConversationDoc{Type: ConversationGroup, Name: "Team", Description: "old"}
	service := NewMembershipService(chats)

	patch := []byte(`[{"op":"replace","path":"/name","value":"Renamed"}]`)
	conversation, err := service.UpdateConversation(context.Background(), "group-1", patch)
	if err != nil {
		t.Fatal(err)
	}

	if conversation.Name != "Renamed" {
		t.Errorf("name = %q, want Renamed", conversation.Name)
	}
	if chats.conversations["group-1"].Name != "Renamed" {
		t.Error("patched name not written back")
	}
	if chats.conversations["group-1"].Description != "old" {
		t.Error("untouched field changed")
	}
}

func TestUpdateConversationBadPatch(t *testing.T) {
	chats := newFakeChatRepository()
	chats.conversations["group-1"] = ConversationDoc{Type: ConversationGroup, Name: "Team"}
	service := NewMembershipService(chats)

	if _, err := service.UpdateConversation(context.Background(), "group-1", []byte("not json")); err == nil {
		t.Error("malformed patch accepted")
	}
	if chats.conversations["group-1"].Name != "Team" {
		t.Error("conversation changed by rejected patch")
	}
}
