// Package templates holds the HTML views of the country table UI.
//
// Views are written as .templ files; run `templ generate` after editing one
// to refresh the matching _templ.go file.
package templates

// LoadingRefreshSeconds is how often the loading page reloads itself.
const LoadingRefreshSeconds = 2

// LoadErrorMessage is the only message shown when the dataset fetch failed.
const LoadErrorMessage = "Error loading data!!!"

const styles = `
body { font-family: system-ui, sans-serif; margin: 2rem; color: #111; }
.table_heading { margin-bottom: 1rem; }
.table { border-collapse: collapse; margin-top: 1rem; min-width: 60rem; }
.table th, .table td { border: 1px solid #999; padding: .35rem .6rem; text-align: left; }
.table td.num { text-align: right; font-variant-numeric: tabular-nums; }
.controls { display: flex; gap: 1rem; align-items: center; flex-wrap: wrap; }
.controls a, .controls span.disabled, .sort { padding: .15rem .5rem; border: 1px solid #666; border-radius: 3px; text-decoration: none; color: inherit; }
.controls span.disabled { color: #aaa; border-color: #ccc; }
.controls a.active { background: #111; color: #fff; }
.loader_container { display: flex; justify-content: center; align-items: center; min-height: 60vh; }
.spinner { display: grid; grid-template-columns: repeat(3, 20px); gap: 6px; }
.spinner span { width: 20px; height: 20px; background: #000; animation: pulse 1s ease-in-out infinite; }
.spinner span:nth-child(even) { animation-delay: .3s; }
@keyframes pulse { 0%, 100% { opacity: 1; } 50% { opacity: .2; } }
.error { border: 1px solid #c00; background: #fee; padding: .75rem 1rem; margin: 1rem 0; }
.error small { color: #666; }
`
