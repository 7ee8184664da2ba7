package schema

import "strings"

// ValidateAuthor checks an authors entry. The image reference is handed to
// assets; a resolution failure is reported against the image field.
func ValidateAuthor(raw Raw, assets AssetResolver) (Author, error) {
	var fe fieldErrors
	a := Author{
		Name:  text(raw, "name", true, &fe),
		Title: text(raw, "title", true, &fe),
	}

	if ref := text(raw, "image", true, &fe); strings.TrimSpace(ref) != "" {
		if assets == nil {
			fe.add("image", "no asset resolver available for %q", ref)
		} else if img, err := assets.ResolveImage(ref); err != nil {
			fe.add("image", "%s", err.Error())
		} else {
			a.Image = img
		}
	}

	if err := fe.err(Authors); err != nil {
		return Author{}, err
	}
	return a, nil
}

// ValidateBlogPost checks a blog entry, filling in DefaultAuthor when the
// author is missing. An explicit null author is treated like a missing key
// rather than rejected.
func ValidateBlogPost(raw Raw) (BlogPost, error) {
	var fe fieldErrors
	p := BlogPost{
		Title:       text(raw, "title", false, &fe),
		Description: text(raw, "description", false, &fe),
		PublishDate: date(raw, "publishDate", &fe),
		Author:      DefaultAuthor,
	}

	if v, ok := raw["author"]; ok && v != nil {
		p.Author = text(raw, "author", false, &fe)
	}

	if err := fe.err(Blog); err != nil {
		return BlogPost{}, err
	}
	return p, nil
}

// ValidatePolicyPage checks a policies entry.
func ValidatePolicyPage(raw Raw) (PolicyPage, error) {
	var fe fieldErrors
	p := PolicyPage{
		Title:       text(raw, "title", false, &fe),
		Description: text(raw, "description", false, &fe),
		UpdatedDate: date(raw, "updatedDate", &fe),
	}

	if err := fe.err(Policies); err != nil {
		return PolicyPage{}, err
	}
	return p, nil
}
