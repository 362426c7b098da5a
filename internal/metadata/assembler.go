package metadata

import (
	"fmt"
	"slices"
	"strings"
)

// AssembleOptions carries the caller-supplied values that do not come from the video.
// Empty strings mean absent.
type AssembleOptions struct {
	Genre string
	Album string
}

// Assemble turns a raw playlist entry into NormalizedMetadata:
//
//  1. find the featured artist in the title, else in the channel name
//  2. split "Author - Title"
//  3. cut a "(... Remix)" or "(... Bootleg)" group out of the title
//  4. clean noise words and the featured clause from title and author
//  5. append " ft. {featured}" and " ({remix})" to the author
//  6. derive the filename
//
// Assemble keeps no state and may be called from many goroutines.
func Assemble(raw RawVideoDescriptor, opts AssembleOptions) NormalizedMetadata {
	featured, ok := ExtractFeatured(raw.Title)
	if !ok {
		featured, _ = ExtractFeatured(raw.Author)
	}

	author, title := Split(raw.Title, raw.Author)
	title, extra, hasExtra := ExtractParenthetical(title)

	title = clean(title, featured, NoiseWords)
	author = clean(author, featured, NoiseWords)

	if featured != "" {
		author = joinAuthor(author, "ft. "+featured)
	}
	if hasExtra {
		author = joinAuthor(author, "("+extra+")")
	}

	meta := NormalizedMetadata{
		Filename:   buildFilename(title, author, raw.ID),
		Author:     author,
		Title:      title,
		ArtworkURL: raw.ThumbnailURL,
		Keywords:   slices.Clone(raw.Keywords),
		Comment:    raw.Description,
		Album:      optional(strings.TrimSpace(opts.Album)),
		Genre:      optional(strings.TrimSpace(opts.Genre)),
		Featured:   featured,
	}
	if raw.PublishDate != nil {
		meta.Date = optional(raw.PublishDate.Format("2006-01-02"))
	}
	return meta
}

func joinAuthor(author, suffix string) string {
	if author == "" {
		return suffix
	}
	return author + " " + suffix
}

// buildFilename names the file "{title} - {author}" unless the title already
// carries a dash. Path separators become dashes so the name stays one component.
func buildFilename(title, author, id string) string {
	var name string
	switch {
	case title == "" && author == "":
		name = id
	case title == "":
		name = author
	case author == "" || hasDash(title):
		name = title
	default:
		name = fmt.Sprintf("%s - %s", title, author)
	}

	name = separatorReplacer.Replace(name)
	if strings.TrimSpace(name) == "" {
		name = "untitled"
	}
	return name
}
