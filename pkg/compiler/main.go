// Package compiler translates MFlow, a small language for shapes and
// animations, into JavaScript that draws on an HTML5 canvas.
//
// Pipeline: MFlow source → Lex → Parse → Analyze → Generate → JavaScript text
//
// Each stage collects diagnostics instead of stopping at the first problem.
// Compile reports success only when no stage produced one.
package compiler
