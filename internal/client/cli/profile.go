package cli

import (
	"context"
	"log"
	"os"
)

// UploadAvatar uploads an image to object storage through a presigned URL
// and remembers the storage key in the local profile.
func (a *App) UploadAvatar(ctx context.Context, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		var err error
		path, err = getSimpleText(a.reader, "Enter path to the image file", os.Stdout)
		if err != nil {
			return err
		}
	}

	key, err := a.avatars.Upload(ctx, path)
	if err != nil {
		log.Printf("Error uploading avatar: %s", err.Error())
		return err
	}

	printlnFn("Uploaded as", key)
	return nil
}

// SaveAvatar downloads the current avatar into the local cache directory
// and prints where it landed.
func (a *App) SaveAvatar(ctx context.Context) error {
	path, err := a.avatars.Download(ctx)
	if err != nil {
		log.Printf("Error downloading avatar: %s", err.Error())
		return err
	}
	if path == "" {
		printlnFn("No avatar uploaded yet")
		return nil
	}
	printlnFn("Saved to", path)
	return nil
}

// EditProfile prompts for the display name and bio; an empty answer keeps
// the current value.
func (a *App) EditProfile(ctx context.Context) error {
	current, err := a.profile.Get(ctx)
	if err != nil {
		log.Printf("Error reading profile: %s", err.Error())
		return err
	}

	var name, bio string
	if current != nil {
		name, bio = current.DisplayName, current.Bio
	}

	if v, err := getSimpleText(a.reader, "Enter display name", os.Stdout); err != nil {
		return err
	} else if v != "" {
		name = v
	}

	if v, err := getSimpleText(a.reader, "Enter bio", os.Stdout); err != nil {
		return err
	} else if v != "" {
		bio = v
	}

	if err := a.profile.SetDetails(ctx, name, bio); err != nil {
		log.Printf("Error saving profile: %s", err.Error())
		return err
	}
	printlnFn("Profile updated")
	return nil
}

// ShowProfile prints the locally stored profile, resolving the avatar key
// to a short-lived download URL when one is set.
func (a *App) ShowProfile(ctx context.Context) error {
	p, err := a.profile.Get(ctx)
	if err != nil {
		log.Printf("Error reading profile: %s", err.Error())
		return err
	}
	if p == nil {
		printlnFn("No profile stored yet")
		return nil
	}

	printlnFn("Email: ", p.Email)
	if p.DisplayName != "" {
		printlnFn("Name:  ", p.DisplayName)
	}
	if p.Bio != "" {
		printlnFn("Bio:   ", p.Bio)
	}
	if p.AvatarKey == "" {
		printlnFn("Avatar: none")
		return nil
	}

	url, err := a.avatars.DownloadURL(ctx)
	if err != nil {
		log.Printf("Error resolving avatar url: %s", err.Error())
		return err
	}
	printlnFn("Avatar:", url)
	return nil
}
