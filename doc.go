/*
Package kiro turns text into rows of keycaps.

A legend sheet is an image of glyphs laid out in a grid. Next to it sits a kiro file
(<image>.kiro.json) naming the keysets on the sheet and the glyph in every cell. Given
a keyset and either a string ("Hello [Enter]") or a run along a physical keyboard
layout ("10 keys of qwerty starting at Q"), Kiro works out the glyph indices and asks
the host to place one keycap per glyph.

	k := kiro.New(kiro.NewConfig(), images.Dir("sheets"), logger.Default())
	picks, _ := k.Keysets()
	res, err := k.StringKeys(host, template, target, picks[0], "Hello", kiro.PlaceOptions{Gap: 0.1})

Loaded kiro files, the image list and the layout library are cached for a few
seconds, so bursts of calls hit the disk once while edits on disk still show up soon.
*/
package kiro
