package autotag

import (
	"sort"
	"strings"

	"github.com/blang/semver"
)

type indexedTag struct {
	tag     Tag
	version semver.Version
}

// TagIndex answers latest-tag queries over a fetched tag list. It is built
// once per run: tags that do not clean to a semantic version are dropped,
// the rest are sorted ascending by version precedence. Equal versions under
// different names keep their fetch order.
type TagIndex struct {
	valid []indexedTag
}

// NewTagIndex filters and sorts the raw tag list.
func NewTagIndex(tags []Tag) *TagIndex {
	index := &TagIndex{}
	for _, tag := range tags {
		if version, ok := Clean(tag.Name); ok {
			index.valid = append(index.valid, indexedTag{tag: tag, version: version})
		}
	}

	sort.SliceStable(index.valid, func(i, j int) bool {
		return index.valid[i].version.Compare(index.valid[j].version) < 0
	})

	return index
}

// ValidTags returns the version tags ascending by semantic-version
// precedence.
func (ix *TagIndex) ValidTags() []Tag {
	tags := make([]Tag, 0, len(ix.valid))
	for _, entry := range ix.valid {
		tags = append(tags, entry.tag)
	}
	return tags
}

// Latest returns the tag a resolution for branch should measure against, or
// nil when no candidate exists.
//
// With includePrereleases false only non-prerelease tags are considered.
// Otherwise release branches always measure against the global maximum, so
// release numbering stays monotone across channels. A non-release branch
// whose global maximum is a prerelease is scoped to tags carrying the branch
// name (raw or in its sanitized channel-label form, since that is what ends
// up in the tag), so one branch's prerelease counter never leaks into
// another's.
func (ix *TagIndex) Latest(branch string, policy ReleasePolicy, includePrereleases bool) *Tag {
	if !includePrereleases {
		for i := len(ix.valid) - 1; i >= 0; i-- {
			if !IsPrerelease(ix.valid[i].version) {
				tag := ix.valid[i].tag
				return &tag
			}
		}
		return nil
	}

	if len(ix.valid) == 0 {
		return nil
	}

	top := ix.valid[len(ix.valid)-1]
	if policy.IsReleaseBranch(branch) || !IsPrerelease(top.version) {
		tag := top.tag
		return &tag
	}

	label := channelLabel(branch)
	for i := len(ix.valid) - 1; i >= 0; i-- {
		name := ix.valid[i].tag.Name
		if strings.Contains(name, branch) || (label != "" && strings.Contains(name, label)) {
			tag := ix.valid[i].tag
			return &tag
		}
	}
	return nil
}
