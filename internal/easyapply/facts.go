// Package easyapply - fact extraction from live form elements
package easyapply

import (
	"fmt"

	"github.com/go-rod/rod"
)

// factsJS gathers everything the classifier needs in one round trip. The
// label lookup walks label[for], wrapping labels, then the closest preceding
// label/legend/heading inside the field's container.
const factsJS = `() => {
	const rect = this.getBoundingClientRect();
	const style = window.getComputedStyle(this);

	let label = '';
	if (this.labels && this.labels.length > 0) {
		label = this.labels[0].innerText || '';
	}
	if (!label && this.id) {
		const l = document.querySelector('label[for="' + CSS.escape(this.id) + '"]');
		if (l) label = l.innerText || '';
	}
	if (!label) {
		const wrap = this.closest('label');
		if (wrap) label = wrap.innerText || '';
	}
	if (!label) {
		const container = this.closest('div, fieldset, li, section');
		if (container) {
			const l = container.querySelector('label, legend, h3, h4');
			if (l) label = l.innerText || '';
		}
	}

	let containerText = '';
	const container = this.closest('div, fieldset, li, section, form');
	if (container) containerText = (container.innerText || '').slice(0, 500);

	let options = [];
	let selectedIndex = -1;
	if (this.tagName.toLowerCase() === 'select') {
		options = Array.from(this.options).map(o => o.innerText || '');
		selectedIndex = this.selectedIndex;
		if (selectedIndex >= 0 && this.options[selectedIndex] &&
			this.options[selectedIndex].hasAttribute('value') &&
			this.options[selectedIndex].value === '') {
			selectedIndex = 0;
		}
	}

	const attrText = [
		this.getAttribute('name') || '',
		this.id || '',
		this.getAttribute('placeholder') || '',
		this.getAttribute('aria-label') || ''
	].join(' ').toLowerCase();

	return {
		tag: this.tagName.toLowerCase(),
		type: (this.getAttribute('type') || '').toLowerCase(),
		visible: style.display !== 'none' && style.visibility !== 'hidden' && rect.width > 0 && rect.height > 0,
		required: this.required === true || this.getAttribute('aria-required') === 'true',
		checked: this.checked === true,
		value: this.value || '',
		attrText: attrText,
		label: label,
		containerText: containerText,
		width: rect.width,
		height: rect.height,
		rows: parseInt(this.getAttribute('rows') || '0', 10),
		cols: parseInt(this.getAttribute('cols') || '0', 10),
		options: options,
		selectedIndex: selectedIndex
	};
}`

// ExtractFacts reads one element's classification facts from the page
func ExtractFacts(el *rod.Element) (FieldFacts, error) {
	res, err := el.Eval(factsJS)
	if err != nil {
		return FieldFacts{}, fmt.Errorf("failed to extract field facts: %w", err)
	}

	v := res.Value
	facts := FieldFacts{
		Tag:           v.Get("tag").Str(),
		Type:          v.Get("type").Str(),
		Visible:       v.Get("visible").Bool(),
		Required:      v.Get("required").Bool(),
		Checked:       v.Get("checked").Bool(),
		Value:         v.Get("value").Str(),
		AttributeText: v.Get("attrText").Str(),
		LabelText:     v.Get("label").Str(),
		ContainerText: v.Get("containerText").Str(),
		Width:         v.Get("width").Num(),
		Height:        v.Get("height").Num(),
		Rows:          v.Get("rows").Int(),
		Cols:          v.Get("cols").Int(),
		SelectedIndex: v.Get("selectedIndex").Int(),
	}

	for _, opt := range v.Get("options").Arr() {
		facts.Options = append(facts.Options, opt.Str())
	}

	return facts, nil
}
