package detector

import "fmt"

const detectionSystemPrompt = `You are an expert document layout analyzer. ` +
	`You identify the rectangular sections of a document page image: headings, ` +
	`paragraphs, tables, figures, headers, footers, signature blocks, and other ` +
	`structural elements. You respond with a JSON array where each element is ` +
	`{"type": "<section label>", "rect": [x0, y0, x1, y1]}. You never include ` +
	`commentary outside the JSON array.`

func (d *Detector) buildUserPrompt(pageNum int) string {
	base := fmt.Sprintf(
		"The image is %dx%d pixels (square canvas with the document at the top-left). "+
			"Return rectangles in IMAGE PIXELS with origin at the top-left as [x0, y0, x1, y1]. "+
			"Ensure x0 < x1 and y0 < y1 and keep values within the image bounds. "+
			"Return ONLY the JSON array with no markdown formatting.",
		d.cfg.CanvasSize, d.cfg.CanvasSize)

	if d.cfg.Request != "" {
		return fmt.Sprintf(
			"Please analyze this document image (page %d). "+
				"The user wants to: '%s'. %s "+
				"Identify ONLY the specific section(s) that match the user's request.",
			pageNum+1, d.cfg.Request, base)
	}
	return fmt.Sprintf(
		"Please analyze this document image (page %d) and identify the major layout sections. "+
			"%s Focus on HIGH-LEVEL sections, not individual elements.",
		pageNum+1, base)
}
