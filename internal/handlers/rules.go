package handlers

import (
	"github.com/churchsite/backend/internal/models"
	"github.com/churchsite/backend/internal/validation"
)

const (
	defaultPageLimit = 10
	maxPageOffset    = 10000
)

var listRules = validation.RuleSet{
	Fields: []validation.Field{
		{Name: "page", Type: validation.Int, Rules: "min=1"},
		{Name: "limit", Type: validation.Int, Rules: "min=1,max=100"},
		{Name: "upcoming", Type: validation.Bool},
	},
	Cross: []validation.CrossRule{
		validation.PageBounds("page", "limit", defaultPageLimit, maxPageOffset),
	},
}

var blogRules = validation.RuleSet{
	Fields: []validation.Field{
		{Name: "title", Type: validation.String, Required: true, Rules: "min=3,max=200"},
		{Name: "slug", Type: validation.String, Rules: "max=200,slug"},
		{Name: "content", Type: validation.String, Required: true},
		{Name: "excerpt", Type: validation.String, Rules: "max=500"},
		{Name: "author", Type: validation.String, Rules: "max=100"},
		{Name: "published", Type: validation.Bool},
		{Name: "publishedAt", Type: validation.DateTime},
		{Name: "removeImage", Type: validation.Bool},
	},
}

var eventRules = validation.RuleSet{
	Fields: []validation.Field{
		{Name: "title", Type: validation.String, Required: true, Rules: "min=3,max=200"},
		{Name: "description", Type: validation.String, Rules: "max=10000"},
		{Name: "location", Type: validation.String, Rules: "max=200"},
		{Name: "startDate", Type: validation.DateTime, Required: true},
		{Name: "endDate", Type: validation.DateTime},
		{Name: "registrationUrl", Type: validation.String, Rules: "max=500,http_url"},
		{Name: "removeImage", Type: validation.Bool},
	},
	Cross: []validation.CrossRule{
		validation.DateOrder("startDate", "endDate"),
	},
}

var sermonRules = validation.RuleSet{
	Fields: []validation.Field{
		{Name: "title", Type: validation.String, Required: true, Rules: "min=3,max=200"},
		{Name: "preacher", Type: validation.String, Required: true, Rules: "max=100"},
		{Name: "scripture", Type: validation.String, Rules: "max=200"},
		{Name: "sermonDate", Type: validation.Date, Required: true},
		{Name: "videoUrl", Type: validation.String, Rules: "max=500,http_url"},
		{Name: "audioUrl", Type: validation.String, Rules: "max=500,http_url"},
		{Name: "summary", Type: validation.String, Rules: "max=10000"},
		{Name: "removeImage", Type: validation.Bool},
	},
}

var ministryRules = validation.RuleSet{
	Fields: []validation.Field{
		{Name: "name", Type: validation.String, Required: true, Rules: "min=2,max=200"},
		{Name: "description", Type: validation.String, Rules: "max=10000"},
		{Name: "leader", Type: validation.String, Rules: "max=100"},
		{Name: "meetingTime", Type: validation.String, Rules: "max=100"},
		{Name: "contactEmail", Type: validation.String, Rules: "email,max=255"},
		{Name: "displayOrder", Type: validation.Int, Rules: "min=0,max=10000"},
		{Name: "removeImage", Type: validation.Bool},
	},
}

var pastorRules = validation.RuleSet{
	Fields: []validation.Field{
		{Name: "name", Type: validation.String, Required: true, Rules: "min=2,max=100"},
		{Name: "title", Type: validation.String, Rules: "max=100"},
		{Name: "bio", Type: validation.String, Rules: "max=20000"},
		{Name: "email", Type: validation.String, Rules: "email,max=255"},
		{Name: "displayOrder", Type: validation.Int, Rules: "min=0,max=10000"},
		{Name: "removeImage", Type: validation.Bool},
	},
}

var pageRules = validation.RuleSet{
	Fields: []validation.Field{
		{Name: "title", Type: validation.String, Required: true, Rules: "min=2,max=200"},
		{Name: "content", Type: validation.String, Required: true},
		{Name: "removeImage", Type: validation.Bool},
	},
}

var loginRules = validation.RuleSet{
	Fields: []validation.Field{
		{Name: "email", Type: validation.String, Required: true, Rules: "email,max=255"},
		{Name: "password", Type: validation.String, Required: true, Rules: "min=8,max=128"},
	},
}

var deleteUploadRules = validation.RuleSet{
	Fields: []validation.Field{
		{Name: "url", Type: validation.String, Required: true, Rules: "max=300"},
	},
}

func listParams(values validation.Values) models.ListParams {
	return models.ListParams{
		Page:     values.Int("page", 1),
		Limit:    values.Int("limit", defaultPageLimit),
		Upcoming: values.Bool("upcoming"),
	}
}

func blogInput(values validation.Values) models.BlogInput {
	return models.BlogInput{
		Title:       values.String("title"),
		Slug:        values.String("slug"),
		Content:     values.String("content"),
		Excerpt:     values.StringPtr("excerpt"),
		Author:      values.StringPtr("author"),
		Published:   values.Bool("published"),
		PublishedAt: values.TimePtr("publishedAt"),
		RemoveImage: values.Bool("removeImage"),
	}
}

func eventInput(values validation.Values) models.EventInput {
	start, _ := values.Time("startDate")
	return models.EventInput{
		Title:           values.String("title"),
		Description:     values.StringPtr("description"),
		Location:        values.StringPtr("location"),
		StartDate:       start,
		EndDate:         values.TimePtr("endDate"),
		RegistrationURL: values.StringPtr("registrationUrl"),
		RemoveImage:     values.Bool("removeImage"),
	}
}

func sermonInput(values validation.Values) models.SermonInput {
	date, _ := values.Time("sermonDate")
	return models.SermonInput{
		Title:       values.String("title"),
		Preacher:    values.String("preacher"),
		Scripture:   values.StringPtr("scripture"),
		SermonDate:  date,
		VideoURL:    values.StringPtr("videoUrl"),
		AudioURL:    values.StringPtr("audioUrl"),
		Summary:     values.StringPtr("summary"),
		RemoveImage: values.Bool("removeImage"),
	}
}

func ministryInput(values validation.Values) models.MinistryInput {
	return models.MinistryInput{
		Name:         values.String("name"),
		Description:  values.StringPtr("description"),
		Leader:       values.StringPtr("leader"),
		MeetingTime:  values.StringPtr("meetingTime"),
		ContactEmail: values.StringPtr("contactEmail"),
		DisplayOrder: values.Int("displayOrder", 0),
		RemoveImage:  values.Bool("removeImage"),
	}
}

func pastorInput(values validation.Values) models.PastorInput {
	return models.PastorInput{
		Name:         values.String("name"),
		Title:        values.StringPtr("title"),
		Bio:          values.StringPtr("bio"),
		Email:        values.StringPtr("email"),
		DisplayOrder: values.Int("displayOrder", 0),
		RemoveImage:  values.Bool("removeImage"),
	}
}

func pageInput(values validation.Values) models.PageContentInput {
	return models.PageContentInput{
		Title:       values.String("title"),
		Content:     values.String("content"),
		RemoveImage: values.Bool("removeImage"),
	}
}
