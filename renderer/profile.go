package renderer

import (
	"bytes"
	"strings"

	"github.com/etnz/coinfolio"
	md "github.com/nao1215/markdown"
)

// ProfileMarkdown renders the profile of the signed in user.
func ProfileMarkdown(p coinfolio.Profile, email string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		name = email
	}
	doc.H1(name)

	avatar := coinfolio.NotAvailable
	if p.AvatarURL != "" {
		avatar = md.Link("avatar", p.AvatarURL)
	}
	doc.Table(md.TableSet{
		Alignment: alignments(2, 2),
		Header:    []string{"Field", "Value"},
		Rows: [][]string{
			{"Email", cell(email)},
			{"First Name", cell(p.FirstName)},
			{"Last Name", cell(p.LastName)},
			{"Avatar", avatar},
		},
	})
	return doc.String()
}
