package model

import "html/template"

type PageData struct {
	Site        *SiteData
	PageTitle   string
	Description string
	Permalink   string
	Content     template.HTML
	Post        *Post
	Policy      *Policy
}
