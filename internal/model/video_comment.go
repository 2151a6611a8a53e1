package model

import "time"

// ViewerProfile categorizes the author of an external video-platform comment.
type ViewerProfile string

const (
	ProfileNewToCloud   ViewerProfile = "New to cloud"
	ProfileUserInChoice ViewerProfile = "User in choice"
	ProfileExistingUser ViewerProfile = "Boosteroid User"
)

// ViewerProfiles lists the selectable profiles in menu order.
var ViewerProfiles = []ViewerProfile{
	ProfileNewToCloud,
	ProfileUserInChoice,
	ProfileExistingUser,
}

// TeamMember identifies which community manager authored the comment.
type TeamMember string

const (
	TeamMemberIvan   TeamMember = "Ivan"
	TeamMemberArthur TeamMember = "Arthur"
	TeamMemberDenys  TeamMember = "Denys"
	TeamMemberRoman  TeamMember = "Roman"
)

// TeamMembers lists the comment authors in menu and report order.
var TeamMembers = []TeamMember{
	TeamMemberIvan,
	TeamMemberArthur,
	TeamMemberDenys,
	TeamMemberRoman,
}

// VideoComment is a manually entered record describing a comment left on an
// external video platform. Created only through the guided wizard.
type VideoComment struct {
	Date    time.Time
	Channel string
	Link    string
	Comment string
	Profile ViewerProfile
	Author  TeamMember
}
