package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Mayur-HT/Snapshot/internal/models"
	"github.com/google/uuid"
)

func TestMembershipService_CreateGroup(t *testing.T) {
	s := setupServices(t)
	owner := createUser(t, s.db, "owner")

	group, err := s.memberships.CreateGroup(context.Background(), owner.ID, "  Weekend  ")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if group.Name != "Weekend" || group.OwnerID != owner.ID {
		t.Fatalf("unexpected group: %+v", group)
	}
	if group.Owner.ID != owner.ID {
		t.Fatal("expected owner to be preloaded")
	}
	if len(group.Memberships) != 1 || group.Memberships[0].Role != models.GroupRoleOwner {
		t.Fatalf("expected a single owner membership, got %+v", group.Memberships)
	}
}

func TestMembershipService_ListAndGet(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	alice := createUser(t, s.db, "alice")
	bob := createUser(t, s.db, "bob")
	carol := createUser(t, s.db, "carol")

	mine := createGroup(t, s, alice, "Alice's")
	shared := createGroup(t, s, bob, "Bob's")
	addMember(t, s, shared, bob, alice)
	createGroup(t, s, carol, "Carol's")

	groups, err := s.memberships.ListGroups(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListGroups: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	seen := map[uuid.UUID]bool{}
	for _, g := range groups {
		seen[g.ID] = true
	}
	if !seen[mine.ID] || !seen[shared.ID] {
		t.Fatalf("expected own and joined groups, got %v", seen)
	}

	t.Run("member can get", func(t *testing.T) {
		got, err := s.memberships.GetGroup(ctx, shared.ID, alice.ID)
		if err != nil {
			t.Fatalf("GetGroup: %v", err)
		}
		if len(got.Memberships) != 2 {
			t.Fatalf("expected 2 memberships, got %d", len(got.Memberships))
		}
	})

	t.Run("non-member and missing group look the same", func(t *testing.T) {
		_, errHidden := s.memberships.GetGroup(ctx, shared.ID, carol.ID)
		_, errMissing := s.memberships.GetGroup(ctx, uuid.New(), carol.ID)
		if !errors.Is(errHidden, ErrGroupNotFound) || !errors.Is(errMissing, ErrGroupNotFound) {
			t.Fatalf("expected ErrGroupNotFound for both, got %v and %v", errHidden, errMissing)
		}
	})
}

func TestMembershipService_AddMember(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	owner := createUser(t, s.db, "owner")
	member := createUser(t, s.db, "member")
	newcomer := createUser(t, s.db, "newcomer")
	outsider := createUser(t, s.db, "outsider")
	group := createGroup(t, s, owner, "Adders")
	addMember(t, s, group, owner, member)

	t.Run("member can add by trimmed email", func(t *testing.T) {
		m, err := s.memberships.AddMember(ctx, group.ID, member.ID, "  "+newcomer.Email+" ")
		if err != nil {
			t.Fatalf("AddMember: %v", err)
		}
		if m.Role != models.GroupRoleMember || m.UserID != newcomer.ID {
			t.Fatalf("unexpected membership %+v", m)
		}
	})

	t.Run("duplicate add conflicts without a second row", func(t *testing.T) {
		before := memberCount(t, s.db, group.ID)
		if _, err := s.memberships.AddMember(ctx, group.ID, owner.ID, newcomer.Email); !errors.Is(err, ErrAlreadyMember) {
			t.Fatalf("expected ErrAlreadyMember, got %v", err)
		}
		if memberCount(t, s.db, group.ID) != before {
			t.Fatal("duplicate add must not insert")
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		if _, err := s.memberships.AddMember(ctx, group.ID, owner.ID, "ghost@example.com"); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("outsider cannot add", func(t *testing.T) {
		if _, err := s.memberships.AddMember(ctx, group.ID, outsider.ID, outsider.Email); !errors.Is(err, ErrGroupNotFound) {
			t.Fatalf("expected ErrGroupNotFound, got %v", err)
		}
	})
}

func TestMembershipService_RemoveMember(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	owner := createUser(t, s.db, "owner")
	member := createUser(t, s.db, "member")
	other := createUser(t, s.db, "other")
	group := createGroup(t, s, owner, "Removers")
	addMember(t, s, group, owner, member)
	addMember(t, s, group, owner, other)

	t.Run("owner cannot remove self", func(t *testing.T) {
		if err := s.memberships.RemoveMember(ctx, group.ID, owner.ID, owner.ID); !errors.Is(err, ErrCannotRemoveOwner) {
			t.Fatalf("expected ErrCannotRemoveOwner, got %v", err)
		}
	})

	t.Run("member cannot remove the owner or anyone else", func(t *testing.T) {
		if err := s.memberships.RemoveMember(ctx, group.ID, member.ID, owner.ID); !errors.Is(err, ErrNotOwner) {
			t.Fatalf("expected ErrNotOwner, got %v", err)
		}
		if err := s.memberships.RemoveMember(ctx, group.ID, member.ID, other.ID); !errors.Is(err, ErrNotOwner) {
			t.Fatalf("expected ErrNotOwner, got %v", err)
		}
		if ok, _ := s.access.IsMember(ctx, group.ID, owner.ID); !ok {
			t.Fatal("owner must still be a member")
		}
	})

	t.Run("owner removes member", func(t *testing.T) {
		if err := s.memberships.RemoveMember(ctx, group.ID, owner.ID, other.ID); err != nil {
			t.Fatalf("RemoveMember: %v", err)
		}
		if ok, _ := s.access.IsMember(ctx, group.ID, other.ID); ok {
			t.Fatal("expected member to be removed")
		}
	})

	t.Run("removing a non-member", func(t *testing.T) {
		if err := s.memberships.RemoveMember(ctx, group.ID, owner.ID, uuid.New()); !errors.Is(err, ErrMemberNotFound) {
			t.Fatalf("expected ErrMemberNotFound, got %v", err)
		}
	})

	t.Run("owner membership row resists direct deletes", func(t *testing.T) {
		var ownerRow models.GroupMembership
		s.db.First(&ownerRow, "group_id = ? AND user_id = ?", group.ID, owner.ID)
		if err := s.db.Delete(&ownerRow).Error; !errors.Is(err, models.ErrOwnerMembership) {
			t.Fatalf("expected ErrOwnerMembership, got %v", err)
		}
	})
}

func TestMembershipService_DeleteGroup(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	owner := createUser(t, s.db, "owner")
	member := createUser(t, s.db, "member")
	group := createGroup(t, s, owner, "Doomed")
	addMember(t, s, group, owner, member)
	if _, err := s.invites.Issue(ctx, group.ID, owner.ID, ""); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := s.memberships.DeleteGroup(ctx, group.ID, member.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for member, got %v", err)
	}

	deleted, err := s.memberships.DeleteGroup(ctx, group.ID, owner.ID)
	if err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}
	if deleted.ID != group.ID {
		t.Fatalf("expected deleted group to be returned")
	}

	if memberCount(t, s.db, group.ID) != 0 {
		t.Fatal("expected memberships to be deleted")
	}
	var invites int64
	s.db.Model(&models.GroupInvite{}).Where("group_id = ?", group.ID).Count(&invites)
	if invites != 0 {
		t.Fatal("expected invites to be deleted")
	}
	if _, err := s.memberships.GetGroup(ctx, group.ID, owner.ID); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected group to be gone, got %v", err)
	}
}

func TestAccessService_SharesGroup(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	alice := createUser(t, s.db, "alice")
	bob := createUser(t, s.db, "bob")
	carol := createUser(t, s.db, "carol")
	group := createGroup(t, s, alice, "Pair")
	addMember(t, s, group, alice, bob)

	tests := []struct {
		name string
		a, b models.User
		want bool
	}{
		{"self", carol, carol, true},
		{"group mates", bob, alice, true},
		{"strangers", alice, carol, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.access.SharesGroup(ctx, tt.a.ID, tt.b.ID)
			if err != nil {
				t.Fatalf("SharesGroup: %v", err)
			}
			if got != tt.want {
				t.Fatalf("SharesGroup() = %v, want %v", got, tt.want)
			}
		})
	}
}
