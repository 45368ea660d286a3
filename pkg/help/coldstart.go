package help

const ColdstartYAML = `# llm-pdf-parser Quick Start

input_formats:
  json: "Converter output: {pages: [{number, blocks: [{type: text|table, content, label, rows, bbox}]}]}"
  markdown: "Docling-style export; '<!-- page-break -->' separates pages"
  html: "Headings, paragraphs, lists and tables; class=page-break separates pages"
  pdf: "Text only (one block per line); no table detection"
  text: "Form feed separates pages, blank lines separate blocks"

output:
  file: "<output-dir>/<name>_extracted.json (or .yaml with --format yaml)"
  manifest: "<output-dir>/summary-<date>.yaml for every batch"
  envelope_success: '{"success": true, "file": ..., "extracted_data": {key_information, tables_by_type, narrative_text, document_sections}, "summary": {...}}'
  envelope_failure: '{"success": false, "error": "<message>"}'

table_types:
  room_rates: "rate, price, tariff, usd, eur, per night, sgl, dbl, room type ..."
  meal_plans: "breakfast, half board, full board, all inclusive, meal ..."
  transport: "transfer, airport, speedboat, seaplane, domestic flight ..."
  other: "no signature matched"

commands:
  basic_extract: |
    lpp extract rates.pdf

  batch: |
    lpp extract --input docs/ --workers 8 --output-dir results

  inline_filter: |
    lpp extract --filter "type:room_rates|meal_plans,rows:>=2" rates.json

  spreadsheet: |
    lpp extract --xlsx rates.md

  custom_rules: |
    lpp extract --rules rules.yaml rates.json

  serve: |
    lpp serve --addr :8080
    curl -s -X POST --data-binary @rates.md -H 'Content-Type: text/markdown' localhost:8080/parse
    curl -s -F file=@rates.json localhost:8080/parse

  history: |
    lpp db list
    lpp db list --failed
    lpp db show <id>
    lpp db show --json <id>
    lpp db query --type room_rates --min-rows 2
    lpp db delete <id>

rules_file:
  signatures: "ordered [{category, keywords}]; first match wins"
  leading_rows: "data rows after the header used for classification (default 3)"
  page_gap: "page advance that opens a new section (default 2, 0 disables)"
  format_text: "clean section bodies (literal \\n, blank-line runs)"
  headings: "{max_runes: 80, max_words: 10}"
  windows: "{resort_name: 500, validity_period: 1000, currency: ..., special_offers: ...}"

error_behavior:
  - "Invalid document structure (unknown block type, ragged table): document fails"
  - "A component failure aborts the document; a single odd table or block only adds a warning"
  - "Missing facts are null, never empty strings"
  - "Exit codes: 0=success, 1=partial failure, 2=complete failure"
`
