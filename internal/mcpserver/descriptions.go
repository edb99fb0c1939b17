package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeAnalyzeTasks() string {
	return `Runs the full task analytics pipeline on an issue-tracker export: normalization, category and focus-area counts, workload heatmap, done/expected point bars and per-group trend lines.

USE WHEN:
- Getting an overview of where effort goes across categories and focus areas
- Preparing a sprint or quarter retrospective
- Checking whether estimates track actual burned points

INTERPRETING RESULTS:
- Heatmap cells hold workload classes: 1 small (<= 0.5 points), 2 medium (<= 2), 3 large (> 2); 0 means no tasks
- In average mode a cell like 2.33 is the mean class; in most_common mode it is the modal class
- Bars compare mean burned points with mean expected points per category-focus pair
- dropped_count tasks had points recorded as zero and were left out
- skipped_records failed to decode; schema_warnings decoded but look suspicious

METRICS RETURNED:
- metadata: raw, filtered and dropped counts, skipped records, generation time
- counts: tasks per category and per focus area, most frequent first
- heatmap: categories x focus areas matrix of workload classes
- bars: labels "category-focus", done and expected point means
- trends: regression, statistics and annotations for every group with enough tasks`
}

func describeNormalizeTasks() string {
	return `Converts raw task records into flat per-task metrics.

USE WHEN:
- Inspecting individual tasks behind an aggregate number
- Exporting metrics for another tool
- Debugging label, priority or category mapping

INTERPRETING RESULTS:
- expectedPoints and burnedPoints are rounded to the nearest 0.5
- priority is 0 (unknown) to 3 (high)
- labels are canonical names; numberOfLabels counts the raw labels
- statusDeviateFromFlow counts status moves backwards in the workflow; above 2 suggests rework
- pointsEstimatedEditsTotalDifference is the net change of the estimate

METRICS RETURNED:
- metadata: input counts and cache status
- tasks: one record per kept task in input order`
}

func describeCategoryHeatmap() string {
	return `Computes category and focus-area counts, the workload heatmap and point bars without fitting trends.

USE WHEN:
- Comparing workload size across areas of the product
- Finding categories whose tasks are consistently large
- Switching between average and most_common cell modes

INTERPRETING RESULTS:
- A task with several categories or focus areas counts in every pair
- Cells near 3 mark areas dominated by large tasks; consider splitting work there
- Done above expected in bars means estimates run low for that pair
- Pairs outside the configured axes appear in counts but not in the heatmap

METRICS RETURNED:
- counts: category and focus-area frequencies
- heatmap: labels, categories, values matrix and the mode used
- bars: labels, done and expected point means`
}

func describeTaskTrends() string {
	return `Fits a linear trend of burned points over creation time for each category-focus group.

USE WHEN:
- Checking whether tasks in an area are getting larger or smaller
- Finding outlier tasks that break a group's pattern
- Reviewing groups page by page, largest first

INTERPRETING RESULTS:
- slope_per_day > 0 means tasks in the group are growing over time
- r_squared near 1 means a steady trend; below 0.3 the trend is weak
- defined=false means every task was created at the same instant and no line exists
- band_low and band_high are mean minus and plus one standard deviation
- outlier annotations mark tasks more than two standard deviations from the mean

METRICS RETURNED:
- groups: key, title, series (dates, burned, expected, fitted), statistics, regression, annotations
- page, per_page, total_pages, total_groups`
}

func describeWorkloadSummary() string {
	return `Summarizes a captured task distribution: per-assignee task lists and estimated days from workload classes.

USE WHEN:
- Checking whether work is balanced across a team
- Estimating how long each assignee needs for their queue

INTERPRETING RESULTS:
- small tasks take 0 to 0.5 days, medium 0.5 to 2, large 2 to 3
- days.avg is the midpoint estimate; compare assignees on it
- unclassified tasks had no valid class and add no days

METRICS RETURNED:
- assignees: ordinal, tasks sorted small to large, day range, class counts
- total: day range across all assignees
- task_count`
}
