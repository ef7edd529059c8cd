package mapfile

import (
	"strconv"
	"strings"

	"github.com/reoring/docmap"
	"github.com/reoring/docmap/i18n"
)

// Lint checks a File without access to the Go types it names: blank or
// repeated type names, blank keys, keys claimed twice inside one entity, and
// an explicit "_id" key competing with the id member.
// Problems are reported together as docmap.Issues.
func Lint(f *File) error {
	var iss docmap.Issues
	add := func(code, path, hint string) {
		iss = docmap.AppendIssues(iss, docmap.Issue{Path: path, Code: code, Message: i18n.T(code, nil), Hint: hint})
	}
	if f.Version != CurrentVersion {
		add(docmap.CodeInvalidArgument, "version", "unsupported version "+f.Version)
	}
	seenTypes := map[string]bool{}
	for i, e := range f.Entities {
		name := strings.TrimSpace(e.Type)
		if name == "" {
			add(docmap.CodeInvalidArgument, entityPath(i), "type must not be blank")
			continue
		}
		if seenTypes[name] {
			add(docmap.CodeDuplicateMember, name, "entity is declared twice")
		}
		seenTypes[name] = true

		keys := map[string]string{}
		claim := func(member, key string) {
			if prev, ok := keys[key]; ok && prev != member {
				add(docmap.CodeDuplicateMember, name+"."+member, "field "+key+" is also mapped by "+prev)
				return
			}
			keys[key] = member
		}
		if e.ID != "" {
			claim(e.ID, docmap.IDField)
		}
		for _, p := range e.Fields {
			if strings.TrimSpace(p.Key) == "" {
				add(docmap.CodeIllegalExpression, name+".", "member name must not be blank")
				continue
			}
			if strings.TrimSpace(p.Value) == "" {
				add(docmap.CodeInvalidArgument, name+"."+p.Key, "field name must not be blank")
				continue
			}
			if p.Key == e.ID {
				add(docmap.CodeInvalidArgument, name+"."+p.Key, "the id member must not be renamed in fields")
				continue
			}
			claim(p.Key, p.Value)
		}
		for _, ix := range e.Indexes {
			if strings.TrimSpace(ix.Field) == "" {
				add(docmap.CodeInvalidArgument, name+".indexes", "index field must not be blank")
			}
		}
		for _, m := range e.Ignore {
			if m == e.ID {
				add(docmap.CodeInvalidArgument, name+"."+m, "the id member cannot be ignored")
			}
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

func entityPath(i int) string { return "entities[" + strconv.Itoa(i) + "]" }
