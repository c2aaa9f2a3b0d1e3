package scraper

import (
	"encoding/json"
	"fmt"
)

// LinkedIn profile page selectors.
// These break whenever LinkedIn changes its markup, verify them in DevTools first.
const (
	SelectorName        = `h1.t-24.v-align-middle`
	SelectorBio         = `[class*="text-body-medium"][class*="break-words"]`
	SelectorListItem    = `.artdeco-list__item`
	SelectorCompany     = `.hoverable-link-text span[aria-hidden="true"]`
	SelectorDesignation = `.display-flex.flex-column span[aria-hidden="true"]`
	SelectorDuration    = `.t-black--light span[aria-hidden="true"]`
	SelectorDetail      = `.inline-show-more-text--is-collapsed span[aria-hidden="true"]`
)

const (
	NameNotFound = "Name not found"
	BioNotFound  = "Bio not found"
)

// extractionScript is evaluated in the profile tab; %s receives the JSON encoded
// exclusion markers. It always returns a JSON string.
const extractionScript = `
(() => {
	const markers = %s;
	const text = (root, sel) => root.querySelector(sel)?.innerText.trim() || '';
	const excluded = (value) => markers.some(m => value.includes(m));

	const nameEl = document.querySelector(%q);
	const bioEl = document.querySelector(%q);
	const name = nameEl ? nameEl.innerText.trim() : %q;
	const bio = bioEl ? bioEl.innerText.trim() : %q;

	const experiences = [];
	document.querySelectorAll(%q).forEach(item => {
		const company = text(item, %q);
		const designation = text(item, %q);
		const duration = text(item, %q);
		const detail = text(item, %q);

		if (excluded(company) || excluded(duration)) {
			return;
		}
		if (company && designation && duration) {
			experiences.push({ company, designation, duration, detail });
		}
	});

	const sectionItems = (anchor) => {
		const section = document.getElementById(anchor)?.closest('section');
		return section ? Array.from(section.querySelectorAll(%q)) : [];
	};

	const education = sectionItems('education').map(item => {
		const spans = Array.from(item.querySelectorAll('span[aria-hidden="true"]')).map(s => s.innerText.trim());
		return { school: spans[0] || '', degree: spans[1] || '', duration: spans[2] || '' };
	}).filter(e => e.school);

	const skills = sectionItems('skills')
		.map(item => text(item, 'span[aria-hidden="true"]'))
		.filter(s => s);

	return JSON.stringify({ name, bio, experiences, education, skills });
})()
`

// BuildExtractionScript renders the in-page extraction script for the given exclusion markers
func BuildExtractionScript(markers []string) (string, error) {
	if markers == nil {
		markers = []string{}
	}
	encoded, err := json.Marshal(markers)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(extractionScript,
		encoded,
		SelectorName, SelectorBio, NameNotFound, BioNotFound,
		SelectorListItem,
		SelectorCompany, SelectorDesignation, SelectorDuration, SelectorDetail,
		SelectorListItem,
	), nil
}
