package prompts

// ParseResumeTemplate is rendered with the schema example, the date rules and the
// resume Markdown. Placeholders use {{name}}.
const ParseResumeTemplate = `Parse this resume into JSON matching the schema below.

Schema:
{{schema}}

Rules:
- Copy wording from the resume. Do not invent, embellish or summarize facts.
- Use an empty string for missing text fields and an empty array for missing lists.
- personalInfo.name is the candidate's full name as written.
- workExperience, education and personalProjects are ordered most recent first.
- Give each item in workExperience, education and personalProjects an integer "id" starting at 1 within its list.
- Put bullet points and achievements in "description" as separate array entries, without the bullet characters.
- Sort skills, tools and frameworks into additional.technicalSkills, spoken languages into additional.languages, certifications and courses into additional.certificationsTraining, honours into additional.awards.
- Sections that fit none of the fields above go into customSections keyed by a camelCase name, with a matching sectionMeta entry.
- sectionType is one of "text", "itemList" or "stringList".
{{date_rules}}

Resume:
{{resume_text}}

Output only the JSON object.`

// SystemPrompt is the system instruction for structured extraction calls
const SystemPrompt = "You are a JSON extraction engine. Output only valid JSON, no explanations."

// ResumeSchemaExample shows the model the exact shape of ResumeData
const ResumeSchemaExample = `{
  "personalInfo": {
    "name": "Jane Doe",
    "title": "Senior Software Engineer",
    "email": "jane@example.com",
    "phone": "+1 555 0100",
    "location": "Berlin, Germany",
    "website": "https://janedoe.dev",
    "linkedin": "linkedin.com/in/janedoe",
    "github": "github.com/janedoe"
  },
  "summary": "Backend engineer with 8 years of experience building payment systems.",
  "workExperience": [
    {
      "id": 1,
      "title": "Senior Software Engineer",
      "company": "Acme Corp",
      "location": "Berlin, Germany",
      "years": "2020 - Present",
      "description": [
        "Led migration of the billing service to Go, cutting p99 latency by 40%",
        "Mentored four engineers"
      ]
    }
  ],
  "education": [
    {
      "id": 1,
      "institution": "Technical University of Munich",
      "degree": "B.Sc. Computer Science",
      "years": "2012 - 2016",
      "description": "Thesis on distributed consensus"
    }
  ],
  "personalProjects": [
    {
      "id": 1,
      "name": "pgwatch",
      "role": "Maintainer",
      "years": "2021 - Present",
      "description": [
        "Open source PostgreSQL monitoring tool with 2k stars"
      ]
    }
  ],
  "additional": {
    "technicalSkills": ["Go", "PostgreSQL", "Kubernetes"],
    "languages": ["English", "German"],
    "certificationsTraining": ["AWS Certified Solutions Architect"],
    "awards": ["Hackathon winner 2019"]
  },
  "sectionMeta": [
    {
      "id": "publications",
      "key": "publications",
      "displayName": "Publications",
      "sectionType": "stringList",
      "isDefault": false,
      "isVisible": true,
      "order": 6
    }
  ],
  "customSections": {
    "publications": {
      "sectionType": "stringList",
      "strings": ["Consensus at scale, 2018"]
    }
  }
}`

const dateRulesYearsOnly = `- Dates: reduce every date to the year only, e.g. "2019 - 2023". Use "Present" for ongoing roles.
- Write ranges as "<start> - <end>" with spaces around the hyphen.`

const dateRulesPreserveMonths = `- Dates: keep the month when the resume gives one, as a three-letter English abbreviation, e.g. "Jan 2019 - Mar 2023". Use the year alone when no month is given. Use "Present" for ongoing roles.
- Write ranges as "<start> - <end>" with spaces around the hyphen.`
