package variants

import "strings"

const (
	recolorPromptTemplate = "Change ONLY the upholstery fabric color inside the masked region to match {colorName} ({hex}). " +
		"Preserve exact geometry, seams, stitching, fabric texture, lighting, shadows, camera angle, and background. " +
		"Do not add or remove elements. Output must look like a professional studio product photo."

	polishPromptTemplate = "Do not change anything except make the upholstery look natural and photo-real for {colorName}. " +
		"Keep lighting and texture realistic. No geometry changes."
)

// RecolorPrompt is the edit instruction for an AI candidate.
func RecolorPrompt(colorName, hex string) string {
	return strings.NewReplacer("{colorName}", colorName, "{hex}", hex).Replace(recolorPromptTemplate)
}

// PolishPrompt is the edit instruction applied to the deterministic recolor.
func PolishPrompt(colorName string) string {
	return strings.ReplaceAll(polishPromptTemplate, "{colorName}", colorName)
}
