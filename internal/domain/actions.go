package domain

// Actions holds the policy toggles that gate which changes are planned and
// applied. A disabled toggle never causes an error; the change is recorded
// as skipped instead.
type Actions struct {
	// PermissionsDeleteOtherUsers enables deleting permissions granted to
	// other non-owner users
	PermissionsDeleteOtherUsers bool `mapstructure:"permissions_delete_other_users"`

	// PermissionsDeleteLink enables deleting the 'anyone with link' permission
	PermissionsDeleteLink bool `mapstructure:"permissions_delete_link"`

	// EntryNameDeletePrefixCopyOf enables removing the 'Copy of ' name prefix
	EntryNameDeletePrefixCopyOf bool `mapstructure:"entry_name_delete_prefix_copy_of"`

	// CreateOwnedFileCopy enables copying files that are not owned
	CreateOwnedFileCopy bool `mapstructure:"create_owned_file_copy"`

	// CreateOwnedFolderAndMoveContents enables creating an owned folder for
	// the contents of an unowned folder, and moving entries into it
	CreateOwnedFolderAndMoveContents bool `mapstructure:"create_owned_folder_and_move_contents"`

	// PermissionsKeepEmails lists emails whose permissions are never deleted
	PermissionsKeepEmails []string `mapstructure:"permissions_user_emails_keep"`

	// AllowChangingTopFolder enables planning changes to the top folder itself
	AllowChangingTopFolder bool `mapstructure:"allow_changing_top_folder"`
}

// KeepEmail reports whether the email is on the keep-list
func (a Actions) KeepEmail(email string) bool {
	if email == "" {
		return false
	}
	for _, keep := range a.PermissionsKeepEmails {
		if keep == email {
			return true
		}
	}
	return false
}
