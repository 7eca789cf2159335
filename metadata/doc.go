/*
Package metadata reads kiro metadata files.

A kiro file sits next to a legend-sheet image (sheet.png → sheet.kiro.json) and
describes how the image is sliced into keysets:

	{
	  "version": 1.0,
	  "name": "Sample",
	  "keysets": {
	    "alpha": {"cols": 4, "rows": 4, "start": 2, "default_key": 0,
	              "keys": ["1", "2", {"gap": 2}, "3", null, {"row_gap": 1}, "4"]},
	    "alpha-small": {"cols": 8, "rows": 4, "start": 24, "length": 4,
	                    "default_key": 0, "alt_for": "alpha"}
	  }
	}

Keysets either own a glyph table ("keys") or borrow one from a sibling with
"alt_for". Borrowing is one level deep only.
*/
package metadata
